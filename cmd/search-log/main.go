// 查询日志命令行：查看热门城市与查询统计
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"weather-app/internal/config"
	"weather-app/internal/migrate"
	"weather-app/internal/store"
	"weather-app/internal/utils"
)

type searchStats interface {
	TopCities(ctx context.Context, limit int) ([]store.CityCount, error)
	GetTotals(ctx context.Context) (*store.Totals, error)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  top [limit]")
	fmt.Fprintln(w, "  totals")
	fmt.Fprintln(w, "  help")
	fmt.Fprintln(w, "  exit")
}

// exec 执行单条命令；返回 false 表示退出
func exec(ctx context.Context, st searchStats, w io.Writer, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	switch strings.ToLower(parts[0]) {
	case "exit", "quit":
		return false
	case "help":
		printHelp(w)
	case "top":
		limit := 5
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n <= 0 {
				fmt.Fprintln(w, "usage: top [limit]")
				return true
			}
			limit = n
		}
		top, err := st.TopCities(ctx, limit)
		if err != nil {
			fmt.Fprintln(w, "error:", err)
			return true
		}
		if len(top) == 0 {
			fmt.Fprintln(w, "no searches yet")
		}
		for i, c := range top {
			fmt.Fprintf(w, "%2d. %s | %s | %d\n", i+1, c.Name, c.Country, c.Count)
		}
	case "totals":
		t, err := st.GetTotals(ctx)
		if err != nil {
			fmt.Fprintln(w, "error:", err)
			return true
		}
		fmt.Fprintf(w, "total=%d today=%d\n", t.Total, t.Today)
	default:
		fmt.Fprintf(w, "unknown command %q\n", parts[0])
		printHelp(w)
	}
	return true
}

func main() {
	var envFiles []string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			envFiles = append(envFiles, os.Args[i+1])
			i++
		} else if strings.HasSuffix(os.Args[i], ".env") {
			envFiles = append(envFiles, os.Args[i])
		}
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	ctx := context.Background()
	db, err := utils.OpenPostgres(ctx, cfg.PostgresDSN())
	if err != nil {
		fmt.Println("db error:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		fmt.Println("schema error:", err)
		os.Exit(1)
	}
	st := store.AttachDB(db)
	fmt.Println("search log cli ready")
	printHelp(os.Stdout)
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		if !exec(ctx, st, os.Stdout, in.Text()) {
			return
		}
	}
}
