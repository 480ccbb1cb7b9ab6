// Package dashboard renders the end-of-run summary shown on the terminal.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/betbot/pairmaker/internal/domain"
	"github.com/betbot/pairmaker/internal/marketmaker"
)

// 样式定义
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var headers = []string{"交易对", "挂单状态", "平仓单", "撤单", "计划", "提交", "失败", "错误"}

// RenderSummary 渲染一轮运行的汇总表
func RenderSummary(r *marketmaker.RunReport) string {
	if r == nil {
		return ""
	}
	rows := make([][]string, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		rows = append(rows, pairRow(p))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	planned, submitted, failed := r.Totals()
	totals := fmt.Sprintf("run=%s  耗时=%s  计划=%d  提交=%d  失败=%s",
		r.RunID, r.Duration.Round(time.Millisecond), planned, submitted, countStyle(failed).Render(strconv.Itoa(failed)))

	title := titleStyle.Render("本轮做市汇总")
	return borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, t.Render(), totals))
}

func countStyle(failed int) lipgloss.Style {
	if failed > 0 {
		return warningStyle
	}
	return successStyle
}

func pairRow(p marketmaker.PairReport) []string {
	state, closing, canceled := "-", "-", "-"
	if res := p.Resolution; res != nil {
		state = string(res.State)
		canceled = strconv.Itoa(res.Canceled)
		if res.CancelFailed > 0 {
			canceled += warningStyle.Render(fmt.Sprintf(" (失败 %d)", res.CancelFailed))
		}
		if c := res.Closing; c != nil {
			closing = fmt.Sprintf("%s %s @ %v", c.Side, domain.RoundAmount(c.Amount), c.Price)
			if !c.Submitted {
				closing = warningStyle.Render(closing + " ✗")
			}
		}
	}
	return []string{
		p.Pair.String(),
		state,
		closing,
		canceled,
		strconv.Itoa(p.Planned),
		strconv.Itoa(p.Submitted),
		strconv.Itoa(p.Failed),
		errorText(p),
	}
}

func errorText(p marketmaker.PairReport) string {
	var msgs []string
	if p.ResolveErr != nil {
		msgs = append(msgs, "resolve: "+p.ResolveErr.Error())
	}
	if p.PlanErr != nil {
		msgs = append(msgs, "plan: "+p.PlanErr.Error())
	}
	if len(msgs) == 0 {
		return ""
	}
	return errorStyle.Render(truncate(strings.Join(msgs, "; "), 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
