// Package feast 对接 Feast Feature Store，提供频道统计特征的在线查询。
package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
)

// 频道统计特征视图中本服务消费的特征。
const (
	featureSubscriberCount = "channel_stats:subscriber_count"
	featureTotalVideos     = "channel_stats:total_videos"
	featureAvgViewsRecent  = "channel_stats:avg_views_recent"
)

// ChannelStats 是频道的在线统计特征。
// 来自离线批处理物化的特征视图，与实时元数据查询互为补充。
type ChannelStats struct {
	SubscriberCount float64 `json:"subscriber_count"`
	TotalVideos     float64 `json:"total_videos"`
	AvgViewsRecent  float64 `json:"avg_views_recent"`
}

// StatsProvider 是基于官方 Feast Go SDK 的频道统计特征提供方。
//
// 降级约定：特征服务不可达或特征缺失时调用方按"无统计特征"处理，
// 不影响预测主链路。
type StatsProvider struct {
	client  *feastsdk.GrpcClient
	project string
}

// NewStatsProvider 创建频道统计特征提供方。port 为 0 时使用默认 gRPC 端口 6565。
func NewStatsProvider(host string, port int, project string) (*StatsProvider, error) {
	if host == "" {
		return nil, fmt.Errorf("feast host is required")
	}
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("create feast grpc client: %w", err)
	}
	return &StatsProvider{client: client, project: project}, nil
}

// ChannelStats 查询单个频道的统计特征。缺失的特征取零值。
func (p *StatsProvider) ChannelStats(ctx context.Context, channelID string) (*ChannelStats, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel_id is required")
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{featureSubscriberCount, featureTotalVideos, featureAvgViewsRecent},
		Entities: []feastsdk.Row{
			{"channel_id": feastsdk.StrVal(channelID)},
		},
		Project: p.project,
	}

	resp, err := p.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}
	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("feast returned no rows for channel %s", channelID)
	}

	row := rows[0]
	stats := &ChannelStats{}
	stats.SubscriberCount = featureFloat(row, featureSubscriberCount)
	stats.TotalVideos = featureFloat(row, featureTotalVideos)
	stats.AvgViewsRecent = featureFloat(row, featureAvgViewsRecent)
	return stats, nil
}

// Close 释放客户端资源。
func (p *StatsProvider) Close() error {
	p.client = nil
	return nil
}

// featureFloat 从响应行提取数值特征，SDK 的 Value 包装与缺失值都归为 0。
func featureFloat(row feastsdk.Row, name string) float64 {
	val, ok := row[name]
	if !ok || val == nil {
		return 0
	}
	if f := val.GetDoubleVal(); f != 0 {
		return f
	}
	if n := val.GetInt64Val(); n != 0 {
		return float64(n)
	}
	if f := val.GetFloatVal(); f != 0 {
		return float64(f)
	}
	return 0
}
