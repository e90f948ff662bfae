package booking

import (
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

const codeSuffixLength = 8

// GenerateCode は "BK-20260301-7QKX2M9A" 形式の予約番号を生成する
func GenerateCode(now time.Time) string {
	suffix := strings.ToUpper(shortuuid.New()[:codeSuffixLength])
	return "BK-" + now.UTC().Format("20060102") + "-" + suffix
}
