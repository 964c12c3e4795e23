// Package harness runs conformance scenarios against views.
//
// A scenario seeds an in-memory SQLite database, loads a directory of CUE
// views and runs a list of cases. Each case plays scripted IQL through the
// nlq pipeline, exactly as a generator would produce it, and checks the
// outcome with assertions.
//
// # Scenario Format
//
//	name: candidate_search
//	description: "Filters and actions over the candidate view"
//	views: ../views          # relative to the scenario file
//	view: candidates
//	max_retries: 1
//	seed:
//	  - CREATE TABLE candidate (id INTEGER PRIMARY KEY, name TEXT, country TEXT)
//	  - INSERT INTO candidate VALUES (1, 'Ada', 'Poland')
//	cases:
//	  - name: poles
//	    filters: from_country("Poland")
//	    actions: sort_by("name")
//	    assertions:
//	      - type: sql
//	        equals: SELECT ... WHERE country = ? ORDER BY name
//	      - type: column
//	        column: name
//	        values: [Ada]
//	  - name: typo is corrected on retry
//	    filters:
//	      - from_contry("Poland")
//	      - from_country("Poland")
//	    assertions:
//	      - type: attempts
//	        filters: 2
//
// filters and actions take one IQL text or a list of texts; a list is
// replayed one text per attempt.
//
// # Assertion Types
//
//   - sql: the parameterized SQL equals (or contains) the given text
//   - display: the interpolated SQL equals (or contains) the given text
//   - params: the bound parameters equal values
//   - row_count: the query returned count rows
//   - column: the named column holds values, in order
//   - error: the case failed with code and/or a message containing text
//   - attempts: generator calls per stage
//
// A case that fails without an error assertion fails the scenario.
//
// # Deterministic Testing
//
// Ask ids are sequential per scenario ("<name>-0001") and each scenario
// gets a fresh in-memory database, so result snapshots are stable for
// golden file comparison.
package harness
