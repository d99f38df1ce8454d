package sheet

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"comment-ranker/internal/crawler"

	"github.com/samber/lo"
)

const (
	titleSuffix      = " 기준"
	summaryLabel     = "신청수"
	summaryLabelCell = "E1"
	summaryValueCell = "F1"
	titleCell        = "A1"
	countFormula     = "=COUNT(A3:A)"
	timestampLayout  = "2006.01.02 15시 04분"
)

var (
	titleMerge = GridRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: 4}

	baseHeader = []string{"순위", "닉네임", "신청댓글", "UP수"}

	titleFormat = CellFormat{Bold: lo.ToPtr(true), FontSize: 15, Foreground: &Color{Red: 0.12, Green: 0.27, Blue: 0.55}}
	labelFormat = CellFormat{Bold: lo.ToPtr(true), FontSize: 11, Foreground: &Color{Red: 0.4, Green: 0.4, Blue: 0.4}}
	valueFormat = CellFormat{Bold: lo.ToPtr(true), FontSize: 12, Foreground: &Color{Red: 0.8}}
	bodyFormat  = CellFormat{HorizontalAlignment: AlignCenter, VerticalAlignment: AlignMiddle}
)

// FormatTimestamp renders t the way the title row shows it, in tz (falls back
// to Asia/Seoul).
func FormatTimestamp(t time.Time, tz string) string {
	if tz == "" {
		tz = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return t.In(loc).Format(timestampLayout)
}

func TitleRow(timestamp string) []any {
	return []any{timestamp + titleSuffix, "", "", "", summaryLabel}
}

// HeaderRow is the 4-column header, plus the favorite and comment columns
// when a cutoff is configured.
func HeaderRow(cutoff int) []string {
	header := append([]string(nil), baseHeader...)
	if cutoff > 0 {
		header = append(header, fmt.Sprintf("애청자 %d명 이상", cutoff), "댓글 내용")
	}
	return header
}

func DataRow(row crawler.CommentRow, enriched bool) []any {
	out := []any{row.Rank, row.Nickname, row.Permalink, row.LikeCount}
	if enriched {
		out = append(out, FavoriteLabel(row.Favorite), row.Comment)
	}
	return out
}

func FavoriteLabel(s crawler.FavoriteStatus) string {
	switch s {
	case crawler.FavoriteMet:
		return "O"
	case crawler.FavoriteNotMet:
		return "X"
	case crawler.FavoriteUnknown:
		return "확인불가"
	default:
		return ""
	}
}

// BodyRange is the fixed rectangle that gets centered after the rows are in,
// header width by rowCeiling rows, regardless of how many rows were written.
func BodyRange(width int, rowCeiling int) GridRange {
	if width < 1 {
		width = len(baseHeader)
	}
	if rowCeiling < 1 {
		rowCeiling = 999
	}
	return GridRange{StartRow: 0, EndRow: rowCeiling, StartCol: 0, EndCol: width}
}

func toValues(ss []string) []any {
	return lo.Map(ss, func(s string, _ int) any { return s })
}
