package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/leadforge/leadscore-cli/internal/model"
)

// Lead database schema expected on the Notion side:
//   Name (title), Score (number), Fit (select), Reasons (rich_text).

// PushScores creates one page per scored lead in the given database.
// Ranking order is preserved so the database capture matches the output.
// Fails on the first create error; leads already pushed stay pushed.
func PushScores(ctx context.Context, c Client, dbID string, results []model.ScoreResult) (int, error) {
	for i, r := range results {
		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: leadProperties(r),
		}
		if _, err := c.CreatePage(ctx, req); err != nil {
			return i, eris.Wrapf(err, "notion: push lead %q", r.Company)
		}
	}
	return len(results), nil
}

func leadProperties(r model.ScoreResult) notionapi.Properties {
	return notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{
				Text: &notionapi.Text{Content: r.Company},
			}},
		},
		"Score": notionapi.NumberProperty{
			Number: r.Score,
		},
		"Fit": notionapi.SelectProperty{
			Select: notionapi.Option{Name: r.FitLabel},
		},
		"Reasons": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{
				Text: &notionapi.Text{Content: truncate(strings.Join(r.Reasons, "; "), 2000)},
			}},
		},
	}
}

// truncate caps s at n runes (Notion rejects rich_text over 2000 chars).
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
