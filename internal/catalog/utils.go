package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func GetStr(col string, rowIdx int, df *dataframe.DataFrame) string {

	if df == nil {
		return ""
	}

	if containsString(df.Names(), col) {
		return strings.TrimSpace(df.Col(col).Elem(rowIdx).String())
	}
	return ""
}

func GetInt(col string, rowIdx int, df *dataframe.DataFrame) int {
	val, err := strconv.Atoi(GetStr(col, rowIdx, df))
	if err != nil {
		return 0
	}
	return val
}

// GetOptionalInt returns nil for blank or non numeric cells.
func GetOptionalInt(col string, rowIdx int, df *dataframe.DataFrame) *int {
	val, err := strconv.Atoi(GetStr(col, rowIdx, df))
	if err != nil {
		return nil
	}
	return &val
}

func ParseDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}
	// Try dd/mm/yyyy format first
	t, err := time.Parse("02/01/2006", dateStr)
	if err == nil {
		return t
	}
	// Fallback to yyyy-mm-dd just in case
	t, err = time.Parse("2006-01-02", dateStr)
	if err == nil {
		return t
	}
	return time.Time{}
}

// ParseFloat reads pesos written as 1.250.000,50.
func ParseFloat(valStr string) float64 {
	if valStr == "" {
		return 0.0
	}
	// Remove thousands separator (.) and replace decimal separator (,) with (.)
	cleanStr := strings.TrimPrefix(strings.TrimSpace(valStr), "$")
	cleanStr = strings.ReplaceAll(cleanStr, " ", "")
	cleanStr = strings.ReplaceAll(cleanStr, ".", "")
	cleanStr = strings.ReplaceAll(cleanStr, ",", ".")
	val, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		return 0.0
	}
	return val
}

func ParseBool(valStr string) bool {
	v := strings.TrimSpace(valStr)
	return strings.EqualFold(v, "Si") || strings.EqualFold(v, "Sí") || strings.EqualFold(v, "Yes") || v == "1"
}
