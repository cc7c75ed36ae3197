package render

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the HTML-to-PDF side service (a wkhtmltopdf-style HTTP
// wrapper). Rendering is best-effort: callers treat any error as "use the
// HTML artifact instead".
type Client struct {
	http *resty.Client
	url  string
}

// New builds a render client. An empty url disables rendering entirely.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetTimeout(timeout),
		url:  url,
	}
}

// RenderPDF posts the HTML document and returns the PDF bytes.
func (c *Client) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if c.url == "" {
		return nil, fmt.Errorf("pdf renderer not configured")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/html").
		SetBody(html).
		Post(c.url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("pdf renderer returned status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}
