// Package gitpath contains consts for the paths and file names that
// live inside the .git directory
package gitpath

// .git/ files and directories, relative to the gitdir root
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	BranchesPath    = "branches"
	ObjectsPath     = "objects"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
	IndexPath       = "index"
)
