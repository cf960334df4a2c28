package writer

import (
	"fmt"
	"strings"
	"time"
)

const filenameDateLayout = "02-01-06"

// Filename builds <BankCode>-Statement-from-<DD-MM-YY>-to-<DD-MM-YY>.<ext>.
func Filename(bankCode string, oldest, newest time.Time, ext string) string {
	return fmt.Sprintf("%s-Statement-from-%s-to-%s.%s",
		strings.ToUpper(bankCode),
		oldest.Format(filenameDateLayout),
		newest.Format(filenameDateLayout),
		strings.TrimPrefix(ext, "."))
}
