package repo

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

// maxSequenceDigits длиннее не разбираем, чтобы номер помещался в int
const maxSequenceDigits = 9

// SequencePattern регулярное выражение Postgres для номеров вида <префикс><цифры>
func SequencePattern(prefix string) string {
	return "^" + regexp.QuoteMeta(prefix) + "[0-9]{1," + strconv.Itoa(maxSequenceDigits) + "}$"
}

// SequenceOf числовая часть номера. Номера с суффиксом (KC00150-A) и чужие префиксы не подходят.
func SequenceOf(number, prefix string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	digits := number[len(prefix):]
	if digits == "" || len(digits) > maxSequenceDigits {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// maxSequence наибольшая числовая часть order_number среди строк model; 0, если таких нет
func maxSequence(db *gorm.DB, model interface{}, prefix string) (int, error) {
	var seq int
	result := db.Model(model).
		Select("COALESCE(MAX(CAST(SUBSTRING(order_number FROM ?) AS INTEGER)), 0)", utf8.RuneCountInString(prefix)+1).
		Where("order_number ~ ?", SequencePattern(prefix)).
		Scan(&seq)
	if result.Error != nil {
		return 0, result.Error
	}
	return seq, nil
}
