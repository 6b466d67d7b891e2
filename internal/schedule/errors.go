package schedule

import "errors"

var (
	// ErrInvalidDate — дата не в формате YYYY-MM-DD.
	ErrInvalidDate = errors.New("некорректная дата")
	// ErrInvalidRequest — взаимоисключающие либо отсутствующие параметры.
	ErrInvalidRequest = errors.New("некорректные параметры запроса")
	// ErrValidation — поле правки вне допустимого диапазона.
	ErrValidation = errors.New("ошибка валидации")
)
