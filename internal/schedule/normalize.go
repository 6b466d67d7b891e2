package schedule

import "strings"

// Латинские двойники и их кириллические соответствия. Таблица общая для
// Go-кода и SQL-выражения в репозитории (см. groupNormExpr) — сравнение
// групп обязано давать одинаковый результат на обеих сторонах.
const (
	latinHomoglyphs    = "ABCEHKMOPTXYabcehkmoptxy"
	cyrillicHomoglyphs = "АВСЕНКМОРТХУавсенкмортху"
)

var homoglyphMap = func() map[rune]rune {
	m := make(map[rune]rune, len(latinHomoglyphs))
	cyr := []rune(cyrillicHomoglyphs)
	for i, r := range latinHomoglyphs {
		m[r] = cyr[i]
	}
	return m
}()

// Normalize приводит название группы к канонической форме для сравнения:
// нижний регистр, латинские двойники переводятся в кириллицу, всё кроме цифр
// и кириллических букв удаляется (пробелы, дефисы, точки и т.п.).
// Пустая строка нормализуется в пустую строку и не совпадает ни с чем.
func Normalize(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if repl, ok := homoglyphMap[r]; ok {
			r = repl
		}
		if r >= '0' && r <= '9' || r >= 'а' && r <= 'я' || r == 'ё' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
