package bird

import "errors"

// Frontmatter delimiter.
const frontmatterDelimiter = "---"

// SchemaVersion is the only bird file schema this build reads and writes.
const SchemaVersion = 1

// Error variables for bird operations.
var (
	ErrConfigFileNotFound       = errors.New("config file not found")
	ErrConfigFileRead           = errors.New("cannot read config file")
	ErrConfigInvalid            = errors.New("invalid config file")
	ErrBirdDirEmpty             = errors.New("bird-dir cannot be empty")
	ErrGenerationsOutOfRange    = errors.New("generations must be between 0 and 10")
	ErrFlagRequiresArg          = errors.New("flag requires an argument")
	ErrUnknownFlag              = errors.New("unknown flag")
	ErrBirdNotFound             = errors.New("bird not found")
	ErrBirdFileExists           = errors.New("bird file already exists")
	ErrIDRequired               = errors.New("bird ID is required")
	ErrNameRequired             = errors.New("bird name is required")
	ErrInvalidID                = errors.New("invalid bird ID")
	ErrParentNotFound           = errors.New("parent bird not found")
	ErrSelfParent               = errors.New("bird cannot be its own parent")
	ErrMissingSchemaVersion     = errors.New("missing required field: schema_version")
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema_version")
	ErrMissingField             = errors.New("missing required field")
	ErrInvalidFieldValue        = errors.New("invalid field value")
	ErrNoFrontmatter            = errors.New("no frontmatter found")
	ErrUnclosedFrontmatter      = errors.New("unclosed frontmatter")
	ErrFrontmatterTooLong       = errors.New("frontmatter exceeds maximum line limit")
	ErrIDMismatch               = errors.New("id does not match file name")
)
