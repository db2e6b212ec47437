package switchboard

import (
	"context"
	"sync"
	"sync/atomic"
)

// BuildTree reconstructs the drive/folder/file hierarchy from each drive's
// flat node list. Construction is per drive and two-pass: folders are
// instantiated into a lookup first, then every node is attached to its
// parent in input order. A parentFolder that doesn't resolve within the
// same drive puts the node at drive root rather than dropping it; a
// file-like node without a documentType is dropped without aborting the
// drive. The output contains exactly one drive node per input detail, in
// input order.
func BuildTree(details []DriveDetail) []*ResourceNode {
	drives := make([]*ResourceNode, 0, len(details))

	for _, detail := range details {
		drive := &ResourceNode{
			ID:       detail.ID,
			Name:     nameOrDefault(detail.Name, "Untitled Drive"),
			Kind:     KindDrive,
			Children: []*ResourceNode{},
		}

		// First pass: every folder goes into the lookup with empty children.
		folders := make(map[string]*ResourceNode)
		for _, raw := range detail.Nodes {
			if raw.ID == "" || raw.Kind != string(KindFolder) {
				continue
			}
			folders[raw.ID] = &ResourceNode{
				ID:       raw.ID,
				Name:     nameOrDefault(raw.Name, "Untitled Folder"),
				Kind:     KindFolder,
				ParentID: parentID(raw),
				Children: []*ResourceNode{},
			}
		}

		// Second pass: attach folders and files to their parent, or to the
		// drive root when the parent is missing or dangling.
		for _, raw := range detail.Nodes {
			if raw.ID == "" {
				continue
			}

			var node *ResourceNode
			switch {
			case raw.Kind == string(KindFolder):
				node = folders[raw.ID]
			case raw.DocumentType != "":
				node = &ResourceNode{
					ID:           raw.ID,
					Name:         nameOrDefault(raw.Name, "Untitled"),
					Kind:         KindFile,
					DocumentType: raw.DocumentType,
					ParentID:     parentID(raw),
				}
			default:
				// File-like node without a document type: malformed, skip.
				continue
			}

			if parent, ok := folders[parentID(raw)]; ok && parentID(raw) != "" && parent.ID != node.ID {
				parent.Children = append(parent.Children, node)
			} else {
				drive.Children = append(drive.Children, node)
			}
		}

		drives = append(drives, drive)
	}

	return drives
}

func nameOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func parentID(raw RawNode) string {
	if raw.ParentFolder == nil {
		return ""
	}
	return *raw.ParentFolder
}

// FetchTree loads the drive list and then every drive's detail
// concurrently, and builds the resource tree from the results. A drive
// whose detail fetch fails is kept with an empty node list so one bad
// drive never hides the others. progress, when non-nil, is called once
// with (0, total) before the fan-out starts, then once per completed
// drive fetch; the completion calls may arrive from concurrent
// goroutines.
func (c *Client) FetchTree(ctx context.Context, progress func(completed, total int)) ([]*ResourceNode, error) {
	drives, err := c.ListDrives(ctx)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		progress(0, len(drives))
	}

	details := make([]DriveDetail, len(drives))
	var done atomic.Int64
	var wg sync.WaitGroup
	for i, summary := range drives {
		wg.Add(1)
		go func(i int, summary DriveSummary) {
			defer wg.Done()
			detail, err := c.GetDriveDetail(ctx, summary.ID)
			if err != nil {
				c.logger.Warn("drive detail fetch failed", "drive", summary.ID, "error", err)
				detail = DriveDetail{ID: summary.ID, Name: summary.Name}
			}
			details[i] = detail
			if progress != nil {
				progress(int(done.Add(1)), len(drives))
			}
		}(i, summary)
	}
	wg.Wait()

	return BuildTree(details), nil
}

// FindNode walks the tree by id. Returns nil when the id isn't present.
func FindNode(tree []*ResourceNode, id string) *ResourceNode {
	for _, drive := range tree {
		if found := findIn(drive, id); found != nil {
			return found
		}
	}
	return nil
}

func findIn(node *ResourceNode, id string) *ResourceNode {
	if node.ID == id {
		return node
	}
	for _, child := range node.Children {
		if found := findIn(child, id); found != nil {
			return found
		}
	}
	return nil
}

// DriveOf returns the id of the drive containing the given node id, or ""
// when the node is unknown.
func DriveOf(tree []*ResourceNode, id string) string {
	for _, drive := range tree {
		if findIn(drive, id) != nil {
			return drive.ID
		}
	}
	return ""
}
