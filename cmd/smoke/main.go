// 冒烟测试：对运行中的站点提交查询并检查页面内容，任一检查失败退出码为 1
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"weather-app/internal/logger"
	"weather-app/internal/smoke"
)

func main() {
	base := flag.String("url", "http://127.0.0.1:5000", "Base URL of the running site")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	insecure := flag.Bool("insecure", false, "Skip TLS verification (self-signed certificates)")
	flag.Parse()

	l := logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	client := &http.Client{Timeout: *timeout}
	if *insecure {
		client.Transport = insecureTransport()
	}
	r, err := smoke.NewRunner(client, *base)
	if err != nil {
		l.Error("smoke_init_error", "err", err)
		os.Exit(1)
	}

	failed := 0
	for _, res := range r.Run(context.Background(), smoke.DefaultChecks) {
		if res.OK() {
			fmt.Printf("PASS %-10q rows=%d %s\n", res.Check.Query, res.Rows, res.URL)
			continue
		}
		failed++
		fmt.Printf("FAIL %-10q %v\n", res.Check.Query, res.Err)
	}
	if failed > 0 {
		l.Error("smoke_failed", "failed", failed)
		os.Exit(1)
	}
	l.Info("smoke_ok", "checks", len(smoke.DefaultChecks))
}
