package api

// RawRecord is one entry of the flat structure metadata shipped with a model.
// Children and Nodes are positions, not references: Children index the same
// record array, Nodes index the model's geometry table.
type RawRecord struct {
	// Name of the part or assembly. Becomes the node label.
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Number is the part number.
	Number   string `json:"number,omitempty"`
	Children []int  `json:"children"`
	Nodes    []int  `json:"nodes"`
	// ID is an optional external record identifier, carried through untouched.
	ID string `json:"id,omitempty"`
	// FragmentGUID groups logically equivalent instances of a repeated part.
	FragmentGUID string `json:"fragment_guid,omitempty"`
}

// Association maps one renderable object to the geometry table index it draws.
type Association struct {
	UUID  string `json:"uuid"`
	ID    int    `json:"id"`
	Nodes int    `json:"nodes"`
}

// FragmentRecord is an entry of the secondary fragment dataset. All records
// sharing a FragmentGUID are instances of the same part.
type FragmentRecord struct {
	GUID         string `json:"guid"`
	FragmentGUID string `json:"fragment_guid"`
	Name         string `json:"name,omitempty"`
	Number       string `json:"number,omitempty"`
}

// RendererObject is an object of the live rendered scene.
type RendererObject struct {
	UUID string `json:"uuid"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
	// Parent is the UUID of the enclosing object in the scene hierarchy.
	Parent string `json:"parent,omitempty"`
}
