package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/rushteam/slotkit/core"
	"github.com/rushteam/slotkit/pkg/conv"
)

// VidTowerClient 是内容塔（视频塔）推理服务的 HTTP 客户端。
//
// 上游历史上出现过多种响应形态，解析按固定优先级逐一尝试：
//  1. 裸数值数组：[0.1, 0.2, ...]
//  2. 对象包裹：{"embedding": [...]} / {"data": [...]} / {"prediction": [...]}
//  3. JSON 字符串："[0.1, 0.2, ...]"（二次解析）
//  4. 任意文本：正则抽取全部数值字面量
//
// 四种形态都失败时返回 UNPARSEABLE_RESPONSE：该请求终局失败，不重试、不缓存。
//
// 工程特征：
//   - 显式超时：上游慢不等于本服务慢
//   - 无内部重试：由更外层的调用策略决定
type VidTowerClient struct {
	// Endpoint 服务端点，如 "http://vidtower:8080"
	Endpoint string

	// Timeout 请求超时时间
	Timeout time.Duration

	httpClient *http.Client
}

var _ core.ContentEmbeddingService = (*VidTowerClient)(nil)

// VidTowerOption 客户端配置选项
type VidTowerOption func(*VidTowerClient)

// WithVidTowerTimeout 设置超时时间
func WithVidTowerTimeout(timeout time.Duration) VidTowerOption {
	return func(c *VidTowerClient) {
		c.Timeout = timeout
	}
}

// WithVidTowerHTTPClient 设置自定义 HTTP 客户端
func WithVidTowerHTTPClient(httpClient *http.Client) VidTowerOption {
	return func(c *VidTowerClient) {
		c.httpClient = httpClient
	}
}

// NewVidTowerClient 创建内容塔客户端，默认超时 30s。
func NewVidTowerClient(endpoint string, opts ...VidTowerOption) *VidTowerClient {
	client := &VidTowerClient{
		Endpoint: endpoint,
		Timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: client.Timeout}
	}
	return client
}

// GetContentEmbedding 请求候选内容的嵌入向量。
func (c *VidTowerClient) GetContentEmbedding(ctx context.Context, q *core.ContentQuery) ([]float64, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInternalError,
			fmt.Sprintf("marshal content query: %v", err))
	}

	url := c.Endpoint + "/video-tower/get-video-embedding"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, core.NewUpstreamError(core.ModuleService, fmt.Sprintf("create vidtower request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewUpstreamError(core.ModuleService, fmt.Sprintf("vidtower request failed: %v", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(core.ModuleService, fmt.Sprintf("read vidtower response: %v", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.NewUpstreamError(core.ModuleService,
			fmt.Sprintf("vidtower error: status=%d, body=%s", resp.StatusCode, truncate(respBody, 256)))
	}

	vec, ok := NormalizeEmbeddingResponse(respBody)
	if !ok {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnparseableResponse,
			fmt.Sprintf("vidtower response is not a numeric sequence: %s", truncate(respBody, 256)))
	}
	return vec, nil
}

// Health 健康检查
func (c *VidTowerClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"/ping", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("vidtower health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vidtower health check failed: status=%d", resp.StatusCode)
	}
	return nil
}

// embeddingKeys 是对象包裹形态下按序查找的字段名。
var embeddingKeys = []string{"embedding", "data", "prediction", "predictions", "vector"}

// numberRe 匹配数值字面量（含科学计数法），用于最后的文本抽取形态。
var numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+(?:[eE][-+]?\d+)?`)

// NormalizeEmbeddingResponse 把上游响应体归一化为数值向量。
// 按固定优先级尝试四种形态，全部失败时返回 ok=false。
func NormalizeEmbeddingResponse(body []byte) ([]float64, bool) {
	// 形态 1：裸数值数组
	var raw any
	if err := json.Unmarshal(body, &raw); err == nil {
		if vec, ok := conv.SliceAnyToFloat64(raw); ok && len(vec) > 0 {
			return vec, true
		}

		// 形态 2：对象包裹，按已知字段名查找
		if obj, ok := raw.(map[string]any); ok {
			for _, key := range embeddingKeys {
				if vec, ok := conv.SliceAnyToFloat64(obj[key]); ok && len(vec) > 0 {
					return vec, true
				}
			}
		}

		// 形态 3：JSON 字符串，二次解析
		if s, ok := conv.ToString(raw); ok {
			var inner any
			if err := json.Unmarshal([]byte(s), &inner); err == nil {
				if vec, ok := conv.SliceAnyToFloat64(inner); ok && len(vec) > 0 {
					return vec, true
				}
			}
			// 形态 4：字符串内的数值字面量抽取
			if vec, ok := extractNumbers(s); ok {
				return vec, true
			}
			return nil, false
		}
	}

	// 形态 4：任意文本的数值字面量抽取
	return extractNumbers(string(body))
}

func extractNumbers(s string) ([]float64, bool) {
	matches := numberRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return nil, false
	}
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
