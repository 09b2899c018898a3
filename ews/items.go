package ews

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/model"
)

type findItemResponse struct {
	Body struct {
		Response struct {
			ResponseMessages struct {
				Messages []findItemResponseMessage `xml:"FindItemResponseMessage"`
			} `xml:"ResponseMessages"`
		} `xml:"FindItemResponse"`
	} `xml:"Body"`
}

type findItemResponseMessage struct {
	responseMessage
	RootFolder struct {
		IncludesLastItemInRange bool `xml:"IncludesLastItemInRange,attr"`
		TotalItemsInView        int  `xml:"TotalItemsInView,attr"`
		Items                   struct {
			Entries []itemEntry `xml:",any"`
		} `xml:"Items"`
	} `xml:"RootFolder"`
}

// itemEntry decodes any item element variant (Message, MeetingRequest, ...).
// Only the size is read back; the creation date is filtered server-side.
// Size stays nil when the server omitted the property.
type itemEntry struct {
	Size *int64 `xml:"Size"`
}

// FindItems enumerates every item in the folder, paging by offset until the
// server reports the range is complete. A non-zero cutoff restricts the
// result server-side to items created on or before it.
func (c *Client) FindItems(ctx context.Context, folder model.Folder, cutoff time.Time) ([]model.Item, error) {
	restriction := ""
	if !cutoff.IsZero() {
		restriction = fmt.Sprintf(createdOnOrBeforeRestriction, cutoff.UTC().Format(time.RFC3339))
	}

	changeKey := ""
	if folder.ChangeKey != "" {
		changeKey = fmt.Sprintf(` ChangeKey="%s"`, xmlEscape(folder.ChangeKey))
	}

	var items []model.Item

	for offset := 0; ; {
		body := fmt.Sprintf(findItemBody, c.opts.PageSize, offset, restriction, xmlEscape(folder.ID), changeKey)

		data, err := c.call(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("find items in %q at offset %d: %w", folder.DisplayName, offset, err)
		}

		var resp findItemResponse
		if err := xml.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode FindItem response: %w", err)
		}

		messages := resp.Body.Response.ResponseMessages.Messages
		if len(messages) == 0 {
			return nil, fmt.Errorf("empty FindItem response for %q at offset %d", folder.DisplayName, offset)
		}
		msg := messages[0]
		if err := msg.asError(); err != nil {
			return nil, fmt.Errorf("find items in %q: %w", folder.DisplayName, err)
		}

		entries := msg.RootFolder.Items.Entries
		for _, entry := range entries {
			item := model.Item{}
			if entry.Size != nil {
				item.Size = *entry.Size
				item.HasSize = true
			}
			items = append(items, item)
		}

		if msg.RootFolder.IncludesLastItemInRange {
			break
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("server reported more items but returned an empty page in %q at offset %d", folder.DisplayName, offset)
		}
		offset += len(entries)
	}

	return items, nil
}
