// Package mailgate 封装邮件/通知网关的HTTP接口。
// 网关只接收 (recipient, title, message) 三元组，投递失败由调用方记日志，不阻塞业务。
package mailgate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client 通知网关客户端
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewClient 创建网关客户端实例
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

type sendResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send 投递一条通知
func (c *Client) Send(ctx context.Context, recipient, title, message string) error {
	body, _ := json.Marshal(sendRequest{
		Recipient: recipient,
		Title:     title,
		Message:   message,
	})

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification gateway returned status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("notification gateway error[%d]: %s", result.Code, result.Msg)
	}
	return nil
}
