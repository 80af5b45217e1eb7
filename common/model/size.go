package model

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"", "K", "M", "G", "T", "P", "E", "Z"}

// SizeFmt renders n bytes with 1024-based unit prefixes. A prefix is used
// once the value reaches 1000.
func SizeFmt(n int64) string {
	num := float64(n)
	for _, unit := range sizeUnits {
		if math.Abs(num) < 1000.0 {
			return fmt.Sprintf("%3.1f %sB", num, unit)
		}
		num /= 1024.0
	}
	return fmt.Sprintf("%.1f YB", num)
}
