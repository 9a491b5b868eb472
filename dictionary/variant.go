package dictionary

// SchemaVariant captures the minor XML-shape differences the loader must
// tolerate across repository revisions (spec.md §4.1: "tolerate the 2010
// FIX repository distribution as shipped, including the minor schema
// variations across versions 4.0, 4.2, 4.4, 5.0, and FIXT.1.1"), following
// the teacher's per-device variant split (actisense's NGT1 vs. raw-ASCII vs.
// canboat-line readers, each tolerant of a slightly different wire shape of
// the same underlying data).
type SchemaVariant struct {
	Version Version

	// AllowsMissingSectionID is true for FIX.4.0/4.2 repositories, whose
	// Messages.xml predates the SectionID column.
	AllowsMissingSectionID bool

	// RepeatingGroupsUseBlockRepeating is true from FIX.5.0 onward, where
	// the repository models groups as a ComponentType="BlockRepeating"
	// component rather than inlining the entry template under the owning
	// message directly.
	RepeatingGroupsUseBlockRepeating bool
}

var knownVariants = []SchemaVariant{
	{Version: MustParseBeginString("FIX.4.0"), AllowsMissingSectionID: true},
	{Version: MustParseBeginString("FIX.4.2"), AllowsMissingSectionID: true},
	{Version: MustParseBeginString("FIX.4.4"), AllowsMissingSectionID: false},
	{Version: MustParseBeginString("FIX.5.0"), AllowsMissingSectionID: false, RepeatingGroupsUseBlockRepeating: true},
	{Version: MustParseBeginString("FIXT.1.1"), AllowsMissingSectionID: false, RepeatingGroupsUseBlockRepeating: true},
}

// VariantFor returns the known SchemaVariant whose transport, major and
// minor version match v (so FIX.5.0SP1 and FIX.5.0SP2 share the FIX.5.0
// variant), or the FIX.4.4 variant as a conservative default if v is not
// one of the versions this engine has specific tolerances for.
func VariantFor(v Version) SchemaVariant {
	for _, variant := range knownVariants {
		kv := variant.Version
		if kv.Transport == v.Transport && kv.Semver.Major == v.Semver.Major && kv.Semver.Minor == v.Semver.Minor {
			variant.Version = v
			return variant
		}
	}
	return SchemaVariant{Version: v}
}
