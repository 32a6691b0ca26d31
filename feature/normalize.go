package feature

import (
	"regexp"
	"strings"

	"github.com/rushteam/slotkit/core"
)

// 文本规范化规则（顺序固定）：
//  1. 全部转小写
//  2. 去除 URL（http 起始的连续非空白段）
//  3. 非 [a-z0-9 空白] 字符替换为单个空格
//  4. 连续空白折叠为单个空格并去除首尾空白
//
// 规范化是幂等的：对已规范化文本再次调用是 no-op。
var (
	urlRe        = regexp.MustCompile(`http\S+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText 规范化一段原始文本。空输入返回空字符串。
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ToLower(text)
	t = urlRe.ReplaceAllString(t, "")
	t = nonAlnumRe.ReplaceAllString(t, " ")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// CleanVideo 规范化一条原始视频记录。产出后不可再变。
func CleanVideo(v core.VideoRecord) core.CleanVideoRecord {
	vc := v.ViewCount
	if vc < 0 {
		vc = 0
	}
	return core.CleanVideoRecord{
		CleanTitle:       CleanText(v.Title),
		CleanDescription: CleanText(v.Description),
		ViewCount:        vc,
	}
}
