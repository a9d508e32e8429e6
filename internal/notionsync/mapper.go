package notionsync

import (
	"time"

	"github.com/jomei/notionapi"
	"github.com/kimdat546/bot-than-giu-cua/internal/domain"
)

// RecordToNotionProperties converts a ledger record to Notion properties.
// The "Record ID" rich-text field carries the ledger's record ID and is
// what sync uses for deduplication.
func RecordToNotionProperties(rec *domain.Record) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Description,
					},
				},
			},
		},
		"Date": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: func() *notionapi.Date {
					d := notionapi.Date(time.Date(
						rec.Date.Year,
						rec.Date.Month,
						rec.Date.Day,
						0, 0, 0, 0, time.UTC,
					))
					return &d
				}(),
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: rec.Amount.InexactFloat64(),
		},
		"Record ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.ID,
					},
				},
			},
		},
	}

	if rec.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: rec.Category,
			},
		}
	}

	if rec.Kind != "" {
		props["Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Kind),
			},
		}
	}

	if rec.Source != "" {
		props["Source"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Source),
			},
		}
	}

	if rec.Account != "" {
		props["Account"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: rec.Account,
			},
		}
	}

	if len(rec.Tags) > 0 {
		options := make([]notionapi.Option, 0, len(rec.Tags))
		for _, tag := range rec.Tags {
			options = append(options, notionapi.Option{Name: tag})
		}
		props["Tags"] = notionapi.MultiSelectProperty{
			MultiSelect: options,
		}
	}

	if rec.OriginalID != "" {
		props["Original ID"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.OriginalID,
					},
				},
			},
		}
	}

	return props
}

// extractRecordID extracts the ledger record ID from a Notion page's properties.
// Returns empty string if not found.
func extractRecordID(page notionapi.Page) string {
	if prop, ok := page.Properties["Record ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
