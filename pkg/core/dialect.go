package core

// DialectConfig holds the static capability profile of a target database.
// This is pure data; behavior built on it lives in pkg/dialect.Dialect.
type DialectConfig struct {
	// Name is the dialect identifier (e.g. "postgresql", "mssql").
	Name string
	// Aliases are alternative names accepted by the registry ("postgres", "pg").
	Aliases []string

	// Identifiers defines quoting and normalization rules.
	Identifiers IdentifierConfig

	// Placeholder defines how positional query parameters are formatted.
	Placeholder PlaceholderStyle

	// NullSmallest is true when NULL sorts before every value in ascending order.
	NullSmallest bool
	// SupportsNullPrecedence enables native NULLS FIRST/LAST in ORDER BY.
	SupportsNullPrecedence bool
	// SupportsWindowNullPrecedence enables native NULLS FIRST/LAST inside OVER (...).
	SupportsWindowNullPrecedence bool
	// SupportsFilterClause enables aggregate FILTER (WHERE ...).
	SupportsFilterClause bool
	// SupportsWindowFunctions enables OVER (...).
	SupportsWindowFunctions bool
	// SupportsRowValues enables row value expressions such as (a, b).
	SupportsRowValues bool

	SupportsIntersect    bool
	SupportsIntersectAll bool
	SupportsExcept       bool
	SupportsExceptAll    bool
	// ExceptKeyword is EXCEPT or MINUS.
	ExceptKeyword string

	// RequiresRecursiveKeyword prints WITH RECURSIVE for recursive CTEs.
	RequiresRecursiveKeyword bool

	Pagination PaginationStyle
	// UnboundedLimit is printed as LIMIT before an OFFSET without a row limit
	// on engines that reject a bare OFFSET ("-1" for SQLite).
	UnboundedLimit string
	ConcatStyle    ConcatStyle

	// EveryFunction and AnyFunction name native boolean aggregates (BOOL_AND, BOOL_OR).
	// Empty means the registry fallback is used.
	EveryFunction string
	AnyFunction   string

	// CastTypes maps logical types to the dialect's SQL type names.
	CastTypes map[Type]string
}

// PaginationStyle defines how FirstResult/MaxResults are printed.
type PaginationStyle int

const (
	// PaginationLimitOffset prints LIMIT n OFFSET m.
	PaginationLimitOffset PaginationStyle = iota
	// PaginationOffsetFetch prints OFFSET m ROWS FETCH NEXT n ROWS ONLY.
	PaginationOffsetFetch
)

// ConcatStyle defines how CONCAT is printed.
type ConcatStyle int

const (
	// ConcatFunction prints concat(a,b).
	ConcatFunction ConcatStyle = iota
	// ConcatPipe prints a||b.
	ConcatPipe
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (default SQL behavior).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase (Oracle, DB2, H2).
	NormUppercase
	// NormCaseSensitive preserves identifier case exactly (MySQL).
	NormCaseSensitive
	// NormCaseInsensitive normalizes to lowercase for comparison (DuckDB, SQL Server).
	NormCaseInsensitive
)

// PlaceholderStyle defines how query parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (DuckDB, MySQL, SQLite).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. for parameters (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAtP uses @p1, @p2, etc. (SQL Server).
	PlaceholderAtP
	// PlaceholderColon uses :1, :2, etc. (Oracle).
	PlaceholderColon
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string                // Quote character: ", `, [
	QuoteEnd      string                // End quote character (usually same as Quote, ] for [)
	Escape        string                // Escape sequence: "", ``, ]]
	Normalization NormalizationStrategy // How to normalize unquoted identifiers
}
