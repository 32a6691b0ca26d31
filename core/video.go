package core

import "strings"

// VideoRecord 是元数据协作方返回的原始视频记录。
// 字段允许为空；ViewCount 为非负整数（上游偶尔缺失时取 0）。
type VideoRecord struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	ViewCount    int64  `json:"view_count"`
}

// CleanVideoRecord 是规范化后的视频记录，产出后不可变。
type CleanVideoRecord struct {
	CleanTitle       string
	CleanDescription string
	ViewCount        int64
}

// Text 返回标题与描述拼接的文本（实体识别 / 主题分类的输入）。
func (v *CleanVideoRecord) Text() string {
	return strings.TrimSpace(v.CleanTitle + " " + v.CleanDescription)
}

// EntityMention 是命名实体识别产出的一次提及。
// Score 为识别置信度，取值 [0,1]。
type EntityMention struct {
	Mention string  `json:"mention"`
	Score   float64 `json:"score"`
}

// LinkedEntity 是实体链接的结果：提及 → 规范实体名。
// 链接是尽力而为的：失败时退化为使用原始提及文本，或跳过该提及。
type LinkedEntity struct {
	Mention string  `json:"mention"`
	Entity  string  `json:"entity"`
	Score   float64 `json:"score"`
}

// TopicScore 是零样本主题分类产出的一个主题及其独立分数。
// 各主题分数独立打分，不要求和为 1。
type TopicScore struct {
	Topic string  `json:"topic"`
	Score float64 `json:"score"`
}

// VideoSignals 是单个视频经过抽取后的全部信号，供通道塔加权编码。
type VideoSignals struct {
	Clean          CleanVideoRecord
	LinkedEntities []LinkedEntity
	Topics         []TopicScore
}

// ChannelProfile 是元数据协作方返回的频道档案。
type ChannelProfile struct {
	Title           string        `json:"channel_title"`
	SubscriberCount int64         `json:"subscriber_count"`
	TotalVideos     int64         `json:"total_videos"`
	RecentVideos    []VideoRecord `json:"recent_videos"`
}

// ContentQuery 是候选内容的查询载荷，发往内容塔推理服务。
type ContentQuery struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Tags         string `json:"tags"`
	ThumbnailURL string `json:"thumbnail_url"`
}
