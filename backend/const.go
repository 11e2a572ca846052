package backend

// .git/config config keys
const (
	CfgCore                  = "core"
	CfgCoreFormatVersion     = "repositoryformatversion"
	CfgCoreFileMode          = "filemode"
	CfgCoreBare              = "bare"
	CfgCoreLogAllRefUpdate   = "logallrefupdates"
	CfgCoreIgnoreCase        = "ignorecase"
	CfgCorePrecomposeUnicode = "precomposeunicode"
)
