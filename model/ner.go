package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rushteam/slotkit/core"
)

// LexiconRecognizer 是基于词表的命名实体识别器。
//
// 核心思想：
//   - 实体词表（表面形式 -> 规范名 + 先验置信度）启动期加载，只读共享
//   - 对规范化文本做贪心最长匹配的 n-gram 扫描（n 最大为 MaxGram）
//   - 同时承担实体链接：表面形式直接映射规范名，查不到即链接失败
//
// 工程特征：
//   - 实时性：好（哈希查找，无 RPC）
//   - 召回率：取决于词表覆盖；规范化文本已无大小写信号，词表是唯一依据
type LexiconRecognizer struct {
	// Entries 实体词表：表面形式（小写） -> 词表项
	Entries map[string]LexiconEntry

	// MaxGram 扫描的最大 n-gram 长度
	MaxGram int
}

// LexiconEntry 是词表中的一个实体。
type LexiconEntry struct {
	// Canonical 规范实体名（如 "Go (programming language)"）
	Canonical string `json:"canonical"`

	// Score 先验置信度，取值 [0,1]
	Score float64 `json:"score"`
}

var (
	_ core.EntityRecognizer = (*LexiconRecognizer)(nil)
	_ core.EntityLinker     = (*LexiconRecognizer)(nil)
)

// NewLexiconRecognizer 从词表创建识别器，MaxGram 默认为 3。
func NewLexiconRecognizer(entries map[string]LexiconEntry) *LexiconRecognizer {
	normalized := make(map[string]LexiconEntry, len(entries))
	for surface, entry := range entries {
		normalized[strings.ToLower(strings.TrimSpace(surface))] = entry
	}
	return &LexiconRecognizer{
		Entries: normalized,
		MaxGram: 3,
	}
}

// lexiconFile 是词表权重文件的 JSON 结构。
type lexiconFile struct {
	Entities map[string]LexiconEntry `json:"entities"`
}

// NewLexiconRecognizerFromFile 从词表文件加载识别器。
// 文件缺失或损坏是启动期致命错误（MODEL_LOAD）。
func NewLexiconRecognizerFromFile(path string) (*LexiconRecognizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("read entity lexicon %s: %v", path, err))
	}
	var f lexiconFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeModelLoad,
			fmt.Sprintf("parse entity lexicon %s: %v", path, err))
	}
	return NewLexiconRecognizer(f.Entities), nil
}

// Recognize 识别文本中的实体提及：按词位贪心取最长匹配，匹配段内不再重叠扫描。
func (m *LexiconRecognizer) Recognize(_ context.Context, text string) ([]core.EntityMention, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	maxGram := m.MaxGram
	if maxGram <= 0 {
		maxGram = 3
	}

	var mentions []core.EntityMention
	for i := 0; i < len(words); {
		matched := 0
		for n := min(maxGram, len(words)-i); n >= 1; n-- {
			surface := strings.Join(words[i:i+n], " ")
			entry, ok := m.Entries[surface]
			if !ok {
				continue
			}
			if len(surface) > 1 {
				mentions = append(mentions, core.EntityMention{
					Mention: surface,
					Score:   entry.Score,
				})
			}
			matched = n
			break
		}
		if matched > 0 {
			i += matched
		} else {
			i++
		}
	}
	return mentions, nil
}

// Link 将提及映射到规范实体名。查不到时返回 ok=false，调用方降级使用原始提及。
func (m *LexiconRecognizer) Link(_ context.Context, mention string) (string, bool) {
	entry, ok := m.Entries[strings.ToLower(strings.TrimSpace(mention))]
	if !ok || entry.Canonical == "" {
		return "", false
	}
	return entry.Canonical, true
}
