package switchboard

import "context"

const drivesListQuery = `{
  driveDocuments {
    id
    name
  }
}`

const driveDetailQuery = `query DriveDocument($idOrSlug: String!) {
  driveDocument(idOrSlug: $idOrSlug) {
    id
    name
    documentType
    state {
      name
      nodes {
        ... on DocumentDrive_FolderNode {
          id name kind parentFolder
        }
        ... on DocumentDrive_FileNode {
          id name kind documentType parentFolder
        }
      }
    }
  }
}`

// ListDrives retrieves the shallow list of all drives.
func (c *Client) ListDrives(ctx context.Context) ([]DriveSummary, error) {
	var out struct {
		DriveDocuments []DriveSummary `json:"driveDocuments"`
	}
	if err := c.do(ctx, "driveDocuments", drivesListQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.DriveDocuments, nil
}

// GetDriveDetail retrieves one drive's full state including its flat node
// list. The tree builder turns that list into a rooted hierarchy.
func (c *Client) GetDriveDetail(ctx context.Context, idOrSlug string) (DriveDetail, error) {
	var out struct {
		DriveDocument struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			State struct {
				Name  string    `json:"name"`
				Nodes []RawNode `json:"nodes"`
			} `json:"state"`
		} `json:"driveDocument"`
	}
	err := c.do(ctx, "driveDocument", driveDetailQuery, map[string]any{"idOrSlug": idOrSlug}, &out)
	if err != nil {
		return DriveDetail{}, err
	}
	return DriveDetail{
		ID:    out.DriveDocument.ID,
		Name:  out.DriveDocument.Name,
		Nodes: out.DriveDocument.State.Nodes,
	}, nil
}
