package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const defaultTimeout = 30 * time.Second

// Client 对 resty 的薄封装，供交易所网关和行情源共用
//
// 不做重试：一次请求失败就交给调用方处理（按订单/按交易对隔离）。
type Client struct {
	client *resty.Client
}

// NewClient 创建客户端；timeout <= 0 时使用默认 30 秒
func NewClient(host string, timeout time.Duration) *Client {
	host = strings.TrimSuffix(host, "/")
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &Client{client: client}
}

// BaseURL 返回去掉末尾斜杠后的 host
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

type RequestOptions struct {
	Headers map[string]string
	Data    any               // JSON body
	Form    map[string]string // application/x-www-form-urlencoded body
	Params  map[string]any
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "pairmaker/1")
	return r
}

// DoRequest 发送请求并返回原始响应；非 2xx 视为错误
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, opt *RequestOptions) (*resty.Response, error) {
	rc := c.newRequest(ctx)
	if opt != nil {
		for k, v := range opt.Headers {
			rc.SetHeader(k, v)
		}
		if opt.Params != nil {
			rc.SetQueryParamsFromValues(toValues(opt.Params))
		}
		switch {
		case opt.Form != nil:
			rc.SetFormData(opt.Form)
		case opt.Data != nil:
			rc.SetHeader("Content-Type", "application/json")
			rc.SetBody(opt.Data)
		}
	}

	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(method) {
	case http.MethodGet:
		resp, err = rc.Get(endpoint)
	case http.MethodPost:
		resp, err = rc.Post(endpoint)
	case http.MethodDelete:
		resp, err = rc.Delete(endpoint)
	case http.MethodPut:
		resp, err = rc.Put(endpoint)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
	return resp, CheckResponse(resp, err)
}

// GetJSON GET 并把响应体解析到 out
func (c *Client) GetJSON(ctx context.Context, endpoint string, params map[string]any, out any) error {
	resp, err := c.DoRequest(ctx, http.MethodGet, endpoint, &RequestOptions{Params: params})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s", endpoint)
	}
	return nil
}

func toValues(m map[string]any) map[string][]string {
	v := make(map[string][]string, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case []string:
			v[k] = t
		default:
			v[k] = []string{fmt.Sprint(val)}
		}
	}
	return v
}

// CheckResponse 把传输错误和非 2xx 响应统一成 error
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, "http request")
	}
	if resp == nil || resp.IsSuccess() {
		return nil
	}
	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return errors.Errorf("http %d: %s", resp.StatusCode(), body)
}
