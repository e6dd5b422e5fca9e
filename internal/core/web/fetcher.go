package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"
)

// Response 抓取結果
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
}

// Fetcher HTTP GET 能力
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherOptions resty 抓取器設定
type FetcherOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// RestyFetcher 以 resty 實作的抓取器
type RestyFetcher struct {
	client *resty.Client
}

// NewRestyFetcher 建立抓取器
func NewRestyFetcher(opts FetcherOptions) *RestyFetcher {
	client := resty.New().
		SetHeader("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	return &RestyFetcher{client: client}
}

// Fetch 實作 Fetcher
func (f *RestyFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return &Response{
		StatusCode:  resp.StatusCode(),
		Body:        resp.Body(),
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}

// decodeBody 依 Content-Type 與 <meta charset> 轉為 UTF-8
func decodeBody(body []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("body is not valid text")
	}
	return string(decoded), nil
}
