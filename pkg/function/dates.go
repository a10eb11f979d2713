package function

import (
	"fmt"
	"strings"
)

// Date and time function templates. Arguments: TRUNC_x(ts), ADD_x(ts, amount),
// x_DIFF(start, end) = end - start in units of x, and the extraction functions
// YEAR(ts)...EPOCH(ts).

var (
	truncUnits   = []string{"YEAR", "QUARTER", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND"}
	addUnits     = []string{"YEAR", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND"}
	diffUnits    = []string{"YEAR", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND", "MILLISECOND"}
	extractNames = []string{"YEAR", "QUARTER", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND", "DAY_OF_WEEK", "DAY_OF_YEAR", "EPOCH"}
)

// perUnit expands format (with one %s for the unit) for each unit into
// PREFIXunitSUFFIX -> template.
func perUnit(prefix, suffix string, units []string, unitName func(string) string, format string) map[string]string {
	out := make(map[string]string, len(units))
	for _, u := range units {
		out[prefix+u+suffix] = fmt.Sprintf(format, unitName(u))
	}
	return out
}

func same(u string) string { return u }

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// defaultDateTemplates use DATE_TRUNC / EXTRACT / interval arithmetic, which
// PostgreSQL and most engines derived from it accept.
var defaultDateTemplates = merge(
	perUnit("TRUNC_", "", truncUnits, strings.ToLower, "DATE_TRUNC('%s', ?1)"),
	perUnit("ADD_", "", addUnits, strings.ToLower, "(?1 + ?2 * INTERVAL '1 %s')"),
	map[string]string{
		"YEAR_DIFF":        "CAST(EXTRACT(YEAR FROM AGE(?2, ?1)) AS INTEGER)",
		"MONTH_DIFF":       "CAST(EXTRACT(YEAR FROM AGE(?2, ?1)) * 12 + EXTRACT(MONTH FROM AGE(?2, ?1)) AS INTEGER)",
		"WEEK_DIFF":        "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1)) / 604800) AS INTEGER)",
		"DAY_DIFF":         "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1)) / 86400) AS INTEGER)",
		"HOUR_DIFF":        "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1)) / 3600) AS BIGINT)",
		"MINUTE_DIFF":      "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1)) / 60) AS BIGINT)",
		"SECOND_DIFF":      "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1))) AS BIGINT)",
		"MILLISECOND_DIFF": "CAST(TRUNC(EXTRACT(EPOCH FROM (?2 - ?1)) * 1000) AS BIGINT)",
	},
	perUnit("", "", []string{"YEAR", "QUARTER", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE"}, same, "CAST(EXTRACT(%s FROM ?1) AS INTEGER)"),
	map[string]string{
		"SECOND":      "CAST(TRUNC(EXTRACT(SECOND FROM ?1)) AS INTEGER)",
		"DAY_OF_WEEK": "CAST(EXTRACT(DOW FROM ?1) + 1 AS INTEGER)",
		"DAY_OF_YEAR": "CAST(EXTRACT(DOY FROM ?1) AS INTEGER)",
		"EPOCH":       "CAST(EXTRACT(EPOCH FROM ?1) AS BIGINT)",
	},
)

// dialectDateTemplates override the defaults per dialect name.
var dialectDateTemplates = map[string]map[string]string{
	"mssql": merge(
		perUnit("TRUNC_", "", []string{"YEAR", "QUARTER", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE"}, same, "DATEADD(%[1]s, DATEDIFF(%[1]s, 0, ?1), 0)"),
		perUnit("ADD_", "", addUnits, same, "DATEADD(%s, ?2, ?1)"),
		perUnit("", "_DIFF", []string{"YEAR", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "DATEDIFF(%s, ?1, ?2)"),
		perUnit("", "", []string{"YEAR", "QUARTER", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "DATEPART(%s, ?1)"),
		map[string]string{
			"TRUNC_SECOND":     "DATEADD(SECOND, DATEDIFF(SECOND, '2000-01-01', ?1), '2000-01-01')",
			"MILLISECOND_DIFF": "DATEDIFF_BIG(MILLISECOND, ?1, ?2)",
			"WEEK":             "DATEPART(ISO_WEEK, ?1)",
			"DAY_OF_WEEK":      "DATEPART(WEEKDAY, ?1)",
			"DAY_OF_YEAR":      "DATEPART(DAYOFYEAR, ?1)",
			"EPOCH":            "DATEDIFF_BIG(SECOND, '1970-01-01', ?1)",
		},
	),
	"mysql": merge(
		perUnit("ADD_", "", addUnits, same, "DATE_ADD(?1, INTERVAL ?2 %s)"),
		perUnit("", "_DIFF", []string{"YEAR", "MONTH", "WEEK", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "TIMESTAMPDIFF(%s, ?1, ?2)"),
		perUnit("", "", []string{"YEAR", "QUARTER", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "%s(?1)"),
		map[string]string{
			"TRUNC_YEAR":       "CAST(MAKEDATE(YEAR(?1), 1) AS DATETIME)",
			"TRUNC_QUARTER":    "CAST(MAKEDATE(YEAR(?1), 1) + INTERVAL (QUARTER(?1) - 1) QUARTER AS DATETIME)",
			"TRUNC_MONTH":      "CAST(DATE_FORMAT(?1, '%Y-%m-01 00:00:00') AS DATETIME)",
			"TRUNC_WEEK":       "CAST(DATE_SUB(DATE(?1), INTERVAL WEEKDAY(?1) DAY) AS DATETIME)",
			"TRUNC_DAY":        "CAST(DATE(?1) AS DATETIME)",
			"TRUNC_HOUR":       "CAST(DATE_FORMAT(?1, '%Y-%m-%d %H:00:00') AS DATETIME)",
			"TRUNC_MINUTE":     "CAST(DATE_FORMAT(?1, '%Y-%m-%d %H:%i:00') AS DATETIME)",
			"TRUNC_SECOND":     "CAST(DATE_FORMAT(?1, '%Y-%m-%d %H:%i:%s') AS DATETIME)",
			"MILLISECOND_DIFF": "(TIMESTAMPDIFF(MICROSECOND, ?1, ?2) DIV 1000)",
			"WEEK":             "WEEK(?1, 3)",
			"DAY_OF_WEEK":      "DAYOFWEEK(?1)",
			"DAY_OF_YEAR":      "DAYOFYEAR(?1)",
			"EPOCH":            "UNIX_TIMESTAMP(?1)",
		},
	),
	"oracle": merge(
		map[string]string{
			"TRUNC_YEAR":    "TRUNC(?1, 'YYYY')",
			"TRUNC_QUARTER": "TRUNC(?1, 'Q')",
			"TRUNC_MONTH":   "TRUNC(?1, 'MM')",
			"TRUNC_WEEK":    "TRUNC(?1, 'IW')",
			"TRUNC_DAY":     "TRUNC(?1, 'DD')",
			"TRUNC_HOUR":    "TRUNC(?1, 'HH24')",
			"TRUNC_MINUTE":  "TRUNC(?1, 'MI')",
			"TRUNC_SECOND":  "CAST(?1 AS TIMESTAMP(0))",

			"ADD_YEAR":  "ADD_MONTHS(?1, ?2 * 12)",
			"ADD_MONTH": "ADD_MONTHS(?1, ?2)",
			"ADD_WEEK":  "(?1 + NUMTODSINTERVAL(?2 * 7, 'DAY'))",

			"YEAR_DIFF":        "TRUNC(MONTHS_BETWEEN(?2, ?1) / 12)",
			"MONTH_DIFF":       "TRUNC(MONTHS_BETWEEN(?2, ?1))",
			"WEEK_DIFF":        "TRUNC((CAST(?2 AS DATE) - CAST(?1 AS DATE)) / 7)",
			"DAY_DIFF":         "TRUNC(CAST(?2 AS DATE) - CAST(?1 AS DATE))",
			"HOUR_DIFF":        "TRUNC((CAST(?2 AS DATE) - CAST(?1 AS DATE)) * 24)",
			"MINUTE_DIFF":      "TRUNC((CAST(?2 AS DATE) - CAST(?1 AS DATE)) * 1440)",
			"SECOND_DIFF":      "TRUNC((CAST(?2 AS DATE) - CAST(?1 AS DATE)) * 86400)",
			"MILLISECOND_DIFF": "TRUNC((CAST(?2 AS DATE) - CAST(?1 AS DATE)) * 86400000)",

			"YEAR":        "EXTRACT(YEAR FROM ?1)",
			"QUARTER":     "TO_NUMBER(TO_CHAR(?1, 'Q'))",
			"MONTH":       "EXTRACT(MONTH FROM ?1)",
			"WEEK":        "TO_NUMBER(TO_CHAR(?1, 'IW'))",
			"DAY":         "EXTRACT(DAY FROM ?1)",
			"HOUR":        "EXTRACT(HOUR FROM CAST(?1 AS TIMESTAMP))",
			"MINUTE":      "EXTRACT(MINUTE FROM CAST(?1 AS TIMESTAMP))",
			"SECOND":      "TRUNC(EXTRACT(SECOND FROM CAST(?1 AS TIMESTAMP)))",
			"DAY_OF_WEEK": "TO_NUMBER(TO_CHAR(?1, 'D'))",
			"DAY_OF_YEAR": "TO_NUMBER(TO_CHAR(?1, 'DDD'))",
			"EPOCH":       "TRUNC((CAST(?1 AS DATE) - DATE '1970-01-01') * 86400)",
		},
		perUnit("ADD_", "", []string{"DAY", "HOUR", "MINUTE", "SECOND"}, same, "(?1 + NUMTODSINTERVAL(?2, '%s'))"),
	),
	"db2": merge(
		map[string]string{
			"TRUNC_YEAR":    "TRUNC_TIMESTAMP(?1, 'YYYY')",
			"TRUNC_QUARTER": "TRUNC_TIMESTAMP(?1, 'Q')",
			"TRUNC_MONTH":   "TRUNC_TIMESTAMP(?1, 'MM')",
			"TRUNC_WEEK":    "TRUNC_TIMESTAMP(?1, 'IW')",
			"TRUNC_DAY":     "TRUNC_TIMESTAMP(?1, 'DD')",
			"TRUNC_HOUR":    "TRUNC_TIMESTAMP(?1, 'HH24')",
			"TRUNC_MINUTE":  "TRUNC_TIMESTAMP(?1, 'MI')",
			"TRUNC_SECOND":  "TRUNC_TIMESTAMP(?1, 'SS')",

			"ADD_WEEK": "(?1 + (?2 * 7) DAYS)",

			"YEAR_DIFF":        "TIMESTAMPDIFF(256, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"MONTH_DIFF":       "TIMESTAMPDIFF(64, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"WEEK_DIFF":        "TIMESTAMPDIFF(32, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"DAY_DIFF":         "TIMESTAMPDIFF(16, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"HOUR_DIFF":        "TIMESTAMPDIFF(8, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"MINUTE_DIFF":      "TIMESTAMPDIFF(4, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"SECOND_DIFF":      "TIMESTAMPDIFF(2, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1)))",
			"MILLISECOND_DIFF": "(TIMESTAMPDIFF(1, CHAR(TIMESTAMP(?2) - TIMESTAMP(?1))) / 1000)",

			"WEEK":  "WEEK_ISO(?1)",
			"EPOCH": "((DAYS(?1) - DAYS('1970-01-01')) * 86400 + MIDNIGHT_SECONDS(?1))",
		},
		perUnit("ADD_", "", []string{"YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "(?1 + (?2) %sS)"),
		perUnit("", "", []string{"YEAR", "QUARTER", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}, same, "%s(?1)"),
		map[string]string{
			"DAY_OF_WEEK": "DAYOFWEEK(?1)",
			"DAY_OF_YEAR": "DAYOFYEAR(?1)",
		},
	),
	"h2": merge(
		perUnit("ADD_", "", addUnits, same, "DATEADD(%s, ?2, ?1)"),
		perUnit("", "_DIFF", diffUnits, same, "DATEDIFF(%s, ?1, ?2)"),
		map[string]string{
			"WEEK":        "ISO_WEEK(?1)",
			"DAY_OF_WEEK": "DAY_OF_WEEK(?1)",
			"DAY_OF_YEAR": "DAY_OF_YEAR(?1)",
			"EPOCH":       "CAST(EXTRACT(EPOCH FROM ?1) AS BIGINT)",
		},
	),
	"sqlite": merge(
		map[string]string{
			"TRUNC_YEAR":    "datetime(?1, 'start of year')",
			"TRUNC_QUARTER": "datetime(?1, 'start of month', printf('-%d month', (CAST(strftime('%m', ?1) AS INTEGER) - 1) % 3))",
			"TRUNC_MONTH":   "datetime(?1, 'start of month')",
			"TRUNC_WEEK":    "datetime(?1, '-6 days', 'weekday 1', 'start of day')",
			"TRUNC_DAY":     "datetime(?1, 'start of day')",
			"TRUNC_HOUR":    "strftime('%Y-%m-%d %H:00:00', ?1)",
			"TRUNC_MINUTE":  "strftime('%Y-%m-%d %H:%M:00', ?1)",
			"TRUNC_SECOND":  "strftime('%Y-%m-%d %H:%M:%S', ?1)",

			"ADD_WEEK": "datetime(?1, printf('%+d days', ?2 * 7))",

			"YEAR_DIFF":        "(CAST(strftime('%Y', ?2) AS INTEGER) - CAST(strftime('%Y', ?1) AS INTEGER))",
			"MONTH_DIFF":       "((CAST(strftime('%Y', ?2) AS INTEGER) - CAST(strftime('%Y', ?1) AS INTEGER)) * 12 + CAST(strftime('%m', ?2) AS INTEGER) - CAST(strftime('%m', ?1) AS INTEGER))",
			"WEEK_DIFF":        "CAST((julianday(?2) - julianday(?1)) / 7 AS INTEGER)",
			"DAY_DIFF":         "CAST(julianday(?2) - julianday(?1) AS INTEGER)",
			"HOUR_DIFF":        "CAST((julianday(?2) - julianday(?1)) * 24 AS INTEGER)",
			"MINUTE_DIFF":      "CAST((julianday(?2) - julianday(?1)) * 1440 AS INTEGER)",
			"SECOND_DIFF":      "CAST((julianday(?2) - julianday(?1)) * 86400 AS INTEGER)",
			"MILLISECOND_DIFF": "CAST((julianday(?2) - julianday(?1)) * 86400000 AS INTEGER)",

			"YEAR":        "CAST(strftime('%Y', ?1) AS INTEGER)",
			"QUARTER":     "((CAST(strftime('%m', ?1) AS INTEGER) + 2) / 3)",
			"MONTH":       "CAST(strftime('%m', ?1) AS INTEGER)",
			"WEEK":        "CAST(strftime('%W', ?1) AS INTEGER)",
			"DAY":         "CAST(strftime('%d', ?1) AS INTEGER)",
			"HOUR":        "CAST(strftime('%H', ?1) AS INTEGER)",
			"MINUTE":      "CAST(strftime('%M', ?1) AS INTEGER)",
			"SECOND":      "CAST(strftime('%S', ?1) AS INTEGER)",
			"DAY_OF_WEEK": "(CAST(strftime('%w', ?1) AS INTEGER) + 1)",
			"DAY_OF_YEAR": "CAST(strftime('%j', ?1) AS INTEGER)",
			"EPOCH":       "CAST(strftime('%s', ?1) AS INTEGER)",
		},
		perUnit("ADD_", "", []string{"YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}, strings.ToLower, "datetime(?1, printf('%%+d %ss', ?2))"),
	),
	"duckdb": merge(
		perUnit("ADD_", "", addUnits, same, "(?1 + INTERVAL (?2) %s)"),
		perUnit("", "_DIFF", diffUnits, strings.ToLower, "DATE_DIFF('%s', ?1, ?2)"),
		map[string]string{
			"DAY_OF_WEEK": "(DAYOFWEEK(?1) + 1)",
			"DAY_OF_YEAR": "DAYOFYEAR(?1)",
			"EPOCH":       "CAST(EPOCH(?1) AS BIGINT)",
		},
	),
	"snowflake": merge(
		perUnit("ADD_", "", addUnits, strings.ToLower, "DATEADD(%s, ?2, ?1)"),
		perUnit("", "_DIFF", diffUnits, strings.ToLower, "DATEDIFF(%s, ?1, ?2)"),
		map[string]string{
			"DAY_OF_WEEK": "(DAYOFWEEK(?1) + 1)",
			"DAY_OF_YEAR": "DAYOFYEAR(?1)",
			"EPOCH":       "DATE_PART(epoch_second, ?1)",
		},
	),
	"databricks": merge(
		perUnit("ADD_", "", addUnits, same, "timestampadd(%s, ?2, ?1)"),
		perUnit("", "_DIFF", diffUnits, same, "timestampdiff(%s, ?1, ?2)"),
		map[string]string{
			"WEEK":        "WEEKOFYEAR(?1)",
			"DAY_OF_WEEK": "DAYOFWEEK(?1)",
			"DAY_OF_YEAR": "DAYOFYEAR(?1)",
			"EPOCH":       "UNIX_TIMESTAMP(?1)",
		},
	),
}
