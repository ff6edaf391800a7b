package output

import (
	"path/filepath"
	"sort"
	"strings"
)

const (
	treeEdge  = "├── "
	treeLast  = "└── "
	treeVert  = "│   "
	treeSpace = "    "

	// Description alignment column
	descriptionColumn = 30
)

// TreeNode represents a node in the file tree.
type TreeNode struct {
	Name        string
	Description string
	IsDir       bool
	Children    []*TreeNode
}

// RenderFileTree renders a file tree with descriptions aligned at column 30.
// Files maps slash-separated relative paths to their descriptions.
// rootName is printed as the root directory.
func RenderFileTree(rootName string, files map[string]string) string {
	if len(files) == 0 {
		return ""
	}

	root := &TreeNode{
		Name:     rootName,
		IsDir:    true,
		Children: []*TreeNode{},
	}

	for path, desc := range files {
		parts := strings.Split(filepath.ToSlash(path), "/")
		current := root

		for i, part := range parts {
			isLast := i == len(parts)-1

			var child *TreeNode
			for _, c := range current.Children {
				if c.Name == part {
					child = c
					break
				}
			}

			if child == nil {
				child = &TreeNode{
					Name:     part,
					IsDir:    !isLast,
					Children: []*TreeNode{},
				}
				current.Children = append(current.Children, child)
			}

			if isLast {
				child.Description = desc
			}

			current = child
		}
	}

	sortTree(root)

	var sb strings.Builder
	renderNode(&sb, root, "", true, true)
	return sb.String()
}

// sortTree recursively sorts tree nodes (directories first, then alphabetically).
func sortTree(node *TreeNode) {
	if len(node.Children) == 0 {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})

	for _, child := range node.Children {
		sortTree(child)
	}
}

func renderNode(sb *strings.Builder, node *TreeNode, prefix string, isRoot, isLast bool) {
	if isRoot {
		sb.WriteString(StyleSummary.Render(node.Name + "/"))
		sb.WriteString("\n")
	} else {
		connector := treeEdge
		if isLast {
			connector = treeLast
		}

		name := node.Name
		if node.IsDir {
			name += "/"
		}

		line := prefix + connector + name
		width := len([]rune(prefix)) + len([]rune(connector)) + len([]rune(name))

		if node.Description != "" {
			padding := descriptionColumn - width
			if padding < 2 {
				padding = 2
			}
			line += strings.Repeat(" ", padding)
			line += StyleDim.Render(node.Description)
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for i, child := range node.Children {
		childIsLast := i == len(node.Children)-1

		var childPrefix string
		if !isRoot {
			if isLast {
				childPrefix = prefix + treeSpace
			} else {
				childPrefix = prefix + treeVert
			}
		}

		renderNode(sb, child, childPrefix, false, childIsLast)
	}
}

// RenderSimpleTree renders a tree without descriptions.
func RenderSimpleTree(rootName string, files []string) string {
	fileMap := make(map[string]string)
	for _, f := range files {
		fileMap[f] = ""
	}
	return RenderFileTree(rootName, fileMap)
}
