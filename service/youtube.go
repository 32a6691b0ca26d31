package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/slotkit/core"
)

// YouTubeClient 是频道元数据协作方（YouTube Data API v3）的客户端。
//
// 调用链：
//   - channels：频道标题、订阅数、视频总数、uploads 播放列表 ID
//   - playlistItems：uploads 列表中的近期视频（标题/描述/缩略图）
//   - videos：各视频的播放量
//
// 降级约定：
//   - 频道本体查询失败 → UPSTREAM_FAILURE（请求终局失败）
//   - 频道不存在 → NOT_FOUND
//   - 近期视频/播放量查询失败 → 空视频列表（通道塔产出零向量，不硬失败）
type YouTubeClient struct {
	// APIKey Data API 密钥（必需，启动期校验）
	APIKey string

	// BaseURL API 根地址，默认官方端点（测试时可替换）
	BaseURL string

	// Timeout 单次请求超时时间
	Timeout time.Duration

	httpClient *http.Client
}

var _ core.MetadataService = (*YouTubeClient)(nil)

// YouTubeOption 客户端配置选项
type YouTubeOption func(*YouTubeClient)

// WithYouTubeBaseURL 设置 API 根地址（测试用）
func WithYouTubeBaseURL(baseURL string) YouTubeOption {
	return func(c *YouTubeClient) {
		c.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithYouTubeTimeout 设置超时时间
func WithYouTubeTimeout(timeout time.Duration) YouTubeOption {
	return func(c *YouTubeClient) {
		c.Timeout = timeout
	}
}

// WithYouTubeHTTPClient 设置自定义 HTTP 客户端
func WithYouTubeHTTPClient(httpClient *http.Client) YouTubeOption {
	return func(c *YouTubeClient) {
		c.httpClient = httpClient
	}
}

// NewYouTubeClient 创建元数据客户端。
func NewYouTubeClient(apiKey string, opts ...YouTubeOption) *YouTubeClient {
	client := &YouTubeClient{
		APIKey:  apiKey,
		BaseURL: "https://www.googleapis.com/youtube/v3",
		Timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.Timeout}
	}
	return client
}

// channelListResponse 等结构体只声明本客户端消费的字段。
type channelListResponse struct {
	Items []channelItem `json:"items"`
}

type channelItem struct {
	Snippet struct {
		Title string `json:"title"`
	} `json:"snippet"`
	Statistics struct {
		SubscriberCount string `json:"subscriberCount"`
		VideoCount      string `json:"videoCount"`
	} `json:"statistics"`
	ContentDetails struct {
		RelatedPlaylists struct {
			Uploads string `json:"uploads"`
		} `json:"relatedPlaylists"`
	} `json:"contentDetails"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Thumbnails  struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// GetChannelInfo 获取频道标题与订阅数（轻量查询）。
func (c *YouTubeClient) GetChannelInfo(ctx context.Context, channelID string) (string, int64, error) {
	ch, err := c.fetchChannel(ctx, channelID, "snippet,statistics")
	if err != nil {
		return "", 0, err
	}
	return ch.Snippet.Title, parseCount(ch.Statistics.SubscriberCount), nil
}

// GetChannelProfile 获取频道档案与近期视频（含播放量）。
func (c *YouTubeClient) GetChannelProfile(ctx context.Context, channelID string, maxVideos int) (*core.ChannelProfile, error) {
	ch, err := c.fetchChannel(ctx, channelID, "snippet,statistics,contentDetails")
	if err != nil {
		return nil, err
	}

	profile := &core.ChannelProfile{
		Title:           ch.Snippet.Title,
		SubscriberCount: parseCount(ch.Statistics.SubscriberCount),
		TotalVideos:     parseCount(ch.Statistics.VideoCount),
	}

	// 近期视频失败只降级为空列表
	uploads := ch.ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		return profile, nil
	}
	videos, err := c.fetchRecentVideos(ctx, uploads, maxVideos)
	if err != nil {
		return profile, nil
	}
	profile.RecentVideos = videos
	return profile, nil
}

func (c *YouTubeClient) fetchChannel(ctx context.Context, channelID, part string) (*channelItem, error) {
	if channelID == "" {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeMissingField, "channel_id is required")
	}

	var out channelListResponse
	if err := c.getJSON(ctx, "/channels", url.Values{
		"part": {part},
		"id":   {channelID},
	}, &out); err != nil {
		return nil, core.NewUpstreamError(core.ModuleService, fmt.Sprintf("channel lookup failed: %v", err))
	}
	if len(out.Items) == 0 {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound,
			fmt.Sprintf("channel %s not found", channelID))
	}
	return &out.Items[0], nil
}

func (c *YouTubeClient) fetchRecentVideos(ctx context.Context, playlistID string, maxVideos int) ([]core.VideoRecord, error) {
	if maxVideos <= 0 {
		maxVideos = 10
	}

	var items playlistItemsResponse
	if err := c.getJSON(ctx, "/playlistItems", url.Values{
		"part":       {"snippet,contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(maxVideos)},
	}, &items); err != nil {
		return nil, err
	}
	if len(items.Items) == 0 {
		return nil, nil
	}

	videos := make([]core.VideoRecord, 0, len(items.Items))
	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		thumb := item.Snippet.Thumbnails.High.URL
		if thumb == "" {
			thumb = item.Snippet.Thumbnails.Default.URL
		}
		videos = append(videos, core.VideoRecord{
			Title:        item.Snippet.Title,
			Description:  item.Snippet.Description,
			ThumbnailURL: thumb,
		})
		ids = append(ids, item.ContentDetails.VideoID)
	}

	// 播放量单独查询；失败时视频仍可用，播放量记 0
	var stats videoListResponse
	if err := c.getJSON(ctx, "/videos", url.Values{
		"part": {"statistics"},
		"id":   {strings.Join(ids, ",")},
	}, &stats); err != nil {
		return videos, nil
	}
	views := make(map[string]int64, len(stats.Items))
	for _, item := range stats.Items {
		views[item.ID] = parseCount(item.Statistics.ViewCount)
	}
	for i, id := range ids {
		videos[i].ViewCount = views[id]
	}
	return videos, nil
}

func (c *YouTubeClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	query.Set("key", c.APIKey)
	fullURL := c.BaseURL + path + "?" + query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status=%d, body=%s", resp.StatusCode, truncate(body, 256))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// parseCount 解析 API 返回的字符串计数，缺失或非法时取 0。
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
