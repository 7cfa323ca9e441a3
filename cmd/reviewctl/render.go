package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"festival_reviews/internal/domain"
	"festival_reviews/internal/reviewlist"
)

const maxCommentWidth = 48

func starString(rating int) string {
	var b strings.Builder
	for _, on := range reviewlist.Stars(rating) {
		if on {
			b.WriteRune('★')
		} else {
			b.WriteRune('☆')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func renderView(w io.Writer, v reviewlist.View, subjects *reviewlist.SubjectIndex) {
	if v.Err != nil {
		fmt.Fprintf(w, "error: %v\n", v.Err)
	}
	if v.Filtered == 0 {
		fmt.Fprintln(w, "no reviews")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSUBJECT\tRATING\tREVIEWER\tCOMMENT")
	for _, r := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.SubjectType, subjects.Label(r), starString(r.Rating), r.ReviewerName, truncate(r.Comment, maxCommentWidth))
	}
	_ = tw.Flush()

	page := v.PageIndex + 1
	if v.PageCount == 0 {
		page = 0
	}
	fmt.Fprintf(w, "page %d/%d (size %d) · %d of %d reviews", page, v.PageCount, v.PageSize, v.Filtered, v.Total)
	if !v.Filter.IsZero() {
		fmt.Fprintf(w, " · filter: %s", describeFilter(v.Filter))
	}
	fmt.Fprintln(w)
}

func describeFilter(f reviewlist.Filter) string {
	var parts []string
	if f.SubjectType != "" {
		parts = append(parts, "type="+string(f.SubjectType))
	}
	if f.MinRating != nil {
		parts = append(parts, fmt.Sprintf("rating>=%d", *f.MinRating))
	}
	return strings.Join(parts, " ")
}

func renderStats(w io.Writer, st reviewlist.Statistics) {
	fmt.Fprintf(w, "\ntotal %d · average %.2f\n", st.Total, st.Average)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range domain.SubjectTypes {
		fmt.Fprintf(tw, "%s\t%d\n", t, st.CountByType(t))
	}
	for n := domain.MaxRating; n >= domain.MinRating; n-- {
		fmt.Fprintf(tw, "%s\t%d\n", starString(n), st.Distribution[n])
	}
	_ = tw.Flush()
}
