// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// workspace types/constants

package workspace

const (
	MeshesSubdir    = "meshes"
	ModelConfigFile = "model.config"
	ModelSDFFile    = "model.sdf"

	// DescriptorExt is the scene descriptor written by the authoring tool
	DescriptorExt = ".dae"
)

// Templates maps template file names (in the templates directory) to the
// files rendered into the workspace root.
var Templates = map[string]string{
	"modelConfig.txt": ModelConfigFile,
	"modelSDF.txt":    ModelSDFFile,
}

// Workspace is the output tree rebuilt at the start of every run
type Workspace struct {
	Path    string
	MapName string
}
