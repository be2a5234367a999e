// 包 smoke：以浏览器方式对运行中的站点做冒烟检查
// 流程：打开首页，定位搜索表单，提交城市并检查渲染结果
package smoke

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Check：一次搜索及结果页必须包含的内容
type Check struct {
	Query string
	// 页面文本中必须出现的片段
	Want string
	// 是否必须出现预报表格
	Forecast bool
}

// DefaultChecks：成功查询与服务商拒绝两条路径
var DefaultChecks = []Check{
	{Query: "Tel Aviv", Want: "Tel Aviv, Israel", Forecast: true},
	{Query: "not", Want: "Failed to fetch data", Forecast: false},
}

const maxForecastRows = 7

type Result struct {
	Check Check
	URL   string
	Rows  int
	Err   error
}

func (r Result) OK() bool { return r.Err == nil }

// page：分词器从单个文档收集到的内容
type page struct {
	text      string
	action    string
	inputName string
	hasTable  bool
	rows      int
}

func parsePage(r io.Reader) (*page, error) {
	p := &page{}
	var sb strings.Builder
	z := html.NewTokenizer(io.LimitReader(r, 1<<20))
	inForm, inTable := false, false
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("parse error: %w", err)
			}
			p.text = strings.Join(strings.Fields(sb.String()), " ")
			return p, nil
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			switch string(tn) {
			case "form":
				inForm = false
			case "table":
				inTable = false
			case "style", "script":
				if skip > 0 {
					skip--
				}
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := z.TagName()
			attrs := map[string]string{}
			for hasAttr {
				var k, v []byte
				k, v, hasAttr = z.TagAttr()
				attrs[string(k)] = string(v)
			}
			switch string(tn) {
			case "style", "script":
				skip++
			case "form":
				if p.action == "" {
					p.action = attrs["action"]
					inForm = true
				}
			case "input":
				if inForm && p.inputName == "" && (attrs["type"] == "" || attrs["type"] == "text" || attrs["type"] == "search") {
					p.inputName = attrs["name"]
				}
			case "table":
				if attrs["id"] == "forecast" {
					p.hasTable = true
					inTable = true
				}
			case "tr":
				if inTable && strings.Contains(attrs["class"], "forecast-day") {
					p.rows++
				}
			}
		}
	}
}

type Runner struct {
	client  *http.Client
	baseURL *url.URL
}

func NewRunner(client *http.Client, baseURL string) (*Runner, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Runner{client: client, baseURL: u}, nil
}

func (r *Runner) get(ctx context.Context, u string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", u, resp.StatusCode)
	}
	return parsePage(resp.Body)
}

// Run 按顺序执行全部检查；单项失败不中断后续检查
func (r *Runner) Run(ctx context.Context, checks []Check) []Result {
	out := make([]Result, 0, len(checks))
	for _, c := range checks {
		out = append(out, r.run(ctx, c))
	}
	return out
}

func (r *Runner) run(ctx context.Context, c Check) Result {
	res := Result{Check: c}
	home, err := r.get(ctx, r.baseURL.String())
	if err != nil {
		res.Err = err
		return res
	}
	if home.action == "" || home.inputName == "" {
		res.Err = fmt.Errorf("search form not found on home page")
		return res
	}
	target, err := r.baseURL.Parse(home.action)
	if err != nil {
		res.Err = fmt.Errorf("bad form action %q: %w", home.action, err)
		return res
	}
	q := target.Query()
	q.Set(home.inputName, c.Query)
	target.RawQuery = q.Encode()
	res.URL = target.String()

	p, err := r.get(ctx, res.URL)
	if err != nil {
		res.Err = err
		return res
	}
	res.Rows = p.rows
	switch {
	case !strings.Contains(p.text, c.Want):
		res.Err = fmt.Errorf("page for %q does not contain %q", c.Query, c.Want)
	case c.Forecast && !p.hasTable:
		res.Err = fmt.Errorf("page for %q has no forecast table", c.Query)
	case c.Forecast && (p.rows == 0 || p.rows > maxForecastRows):
		res.Err = fmt.Errorf("page for %q has %d forecast rows, want 1..%d", c.Query, p.rows, maxForecastRows)
	case !c.Forecast && p.hasTable:
		res.Err = fmt.Errorf("page for %q unexpectedly has a forecast table", c.Query)
	}
	return res
}
