package ews

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/UrsusCyb3rius/EstimateExchangeArchiveSize/model"
)

type findFolderResponse struct {
	Body struct {
		Response struct {
			ResponseMessages struct {
				Messages []findFolderResponseMessage `xml:"FindFolderResponseMessage"`
			} `xml:"ResponseMessages"`
		} `xml:"FindFolderResponse"`
	} `xml:"Body"`
}

type findFolderResponseMessage struct {
	responseMessage
	RootFolder struct {
		IncludesLastItemInRange bool `xml:"IncludesLastItemInRange,attr"`
		TotalItemsInView        int  `xml:"TotalItemsInView,attr"`
		Folders                 struct {
			Entries []folderEntry `xml:",any"`
		} `xml:"Folders"`
	} `xml:"RootFolder"`
}

// folderEntry decodes any of the folder element variants (Folder,
// SearchFolder, CalendarFolder, ...). The element name identifies the
// variant.
type folderEntry struct {
	XMLName  xml.Name
	FolderID struct {
		ID        string `xml:"Id,attr"`
		ChangeKey string `xml:"ChangeKey,attr"`
	} `xml:"FolderId"`
	DisplayName string `xml:"DisplayName"`
}

// FindFolders enumerates every folder under the mailbox's message folder
// root, paging by offset until the server reports the range is complete.
// Search folders are virtual views over other folders and are excluded so
// their contents are not counted twice.
func (c *Client) FindFolders(ctx context.Context) ([]model.Folder, error) {
	var folders []model.Folder

	for offset := 0; ; {
		body := fmt.Sprintf(findFolderBody, c.opts.PageSize, offset, xmlEscape(c.opts.Mailbox))

		data, err := c.call(ctx, body)
		if err != nil {
			return nil, fmt.Errorf("find folders at offset %d: %w", offset, err)
		}

		var resp findFolderResponse
		if err := xml.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode FindFolder response: %w", err)
		}

		messages := resp.Body.Response.ResponseMessages.Messages
		if len(messages) == 0 {
			return nil, fmt.Errorf("empty FindFolder response at offset %d", offset)
		}
		msg := messages[0]
		if err := msg.asError(); err != nil {
			return nil, fmt.Errorf("find folders: %w", err)
		}

		entries := msg.RootFolder.Folders.Entries
		for _, entry := range entries {
			if entry.XMLName.Local == "SearchFolder" {
				if c.logger != nil {
					c.logger.Debug("skipping search folder", "folder", entry.DisplayName)
				}
				continue
			}
			folders = append(folders, model.Folder{
				ID:          entry.FolderID.ID,
				ChangeKey:   entry.FolderID.ChangeKey,
				DisplayName: entry.DisplayName,
			})
		}

		if msg.RootFolder.IncludesLastItemInRange {
			break
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("server reported more folders but returned an empty page at offset %d", offset)
		}
		offset += len(entries)
	}

	return folders, nil
}
