package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort            = "Manage synthetic filesystems of symlinked collections"
	MsgVersionShort         = "Print version information"
	MsgVersionLong          = "Print detailed version information including commit hash and build date"
	MsgInitShort            = "Initialize the current directory as an SFS root"
	MsgIsSfsShort           = "Check whether a path is inside an SFS"
	MsgAddCollectionShort   = "Add a source directory as a collection and build its mirror"
	MsgIsCollectionShort    = "Check whether a path is inside a collection's mirror"
	MsgListCollectionsShort = "List collections in the order they were added"
	MsgSyncCollectionShort  = "Synchronize a collection's mirror with its source"
	MsgDelCollectionShort   = "Remove a collection and reclaim its orphan links"
	MsgReclaimShort         = "Remove all orphan links in the SFS"
	MsgQueryShort           = "Show link info or directory statistics for a path"

	// Output lines
	MsgIsSfsYes        = "SFS root: %s\n"
	MsgIsSfsNo         = "Not inside an SFS\n"
	MsgIsCollectionYes = "Collection root: %s\n"
	MsgIsCollectionNo  = "Not inside a collection\n"
	MsgNoCollections   = "No collections added\n"
	MsgCollectionCount = "Collections: %d\n"
	MsgCollectionItem  = "name %q\troot %q\n"
	MsgLinksAdded      = "Links added: %d\n"
	MsgLinksUpdated    = "Links updated: %d\n"
	MsgLinksDeleted    = "Links deleted: %d\n"

	MsgQueryCollection = "Collection: %s\n"
	MsgQuerySource     = "Source: %s\n"
	MsgQueryCtime      = "Created: %s\n"
	MsgQuerySize       = "Size: %s\n"
	MsgQueryActive     = "Active links: %d\n"
	MsgQueryForeign    = "Foreign links: %d\n"
	MsgQueryOrphan     = "Orphan links: %d\n"
	MsgQueryFiles      = "Files: %d\n"
	MsgQuerySubDirs    = "Sub-directories: %d\n"

	// Error prefixes by failure kind
	MsgErrValidation = "Validation error:"
	MsgErrInternal   = "Internal error:"
	MsgErrUnknown    = "Unknown error"

	// Version output
	MsgVersionFormat = "sfs version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagPath    = "Path to inspect (defaults to the current directory)"
	MsgFlagName    = "Collection name (defaults to the base name of ROOT)"
)
