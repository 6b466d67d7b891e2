package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsSeparators(t *testing.T) {
	assert.Equal(t, "ис21", Normalize("ИС-21"))
	assert.Equal(t, "ис21", Normalize("и с 2 1"))
	assert.Equal(t, "ис21", Normalize("ИС.21"))
	assert.Equal(t, Normalize("ИС-21"), Normalize("и с 2 1"))
}

func TestNormalizeTranslatesLatinHomoglyphs(t *testing.T) {
	// Латинские A, B, C визуально совпадают с кириллическими А, В, С.
	assert.Equal(t, Normalize("АВС-12"), Normalize("ABC-12"))
	assert.Equal(t, "авс12", Normalize("ABC-12"))
	// Полный набор двойников.
	assert.Equal(t, "авсенкмортху", Normalize("ABCEHKMOPTXY"))
	assert.Equal(t, "авсенкмортху", Normalize("abcehkmoptxy"))
}

func TestNormalizeDropsUntranslatedLatin(t *testing.T) {
	// I и S не входят в таблицу двойников и удаляются целиком.
	assert.Equal(t, "21", Normalize("IS-21"))
	assert.NotEqual(t, Normalize("ИС-21"), Normalize("IS-21"))
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{"ИС-21", "ABC-12", "и с 2 1", "Гр. №404!", "", "ёж-1"}
	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "повторная нормализация изменила %q", s)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("---"))
	assert.NotEqual(t, Normalize("ИС-21"), Normalize(""))
}
