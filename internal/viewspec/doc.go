// Package viewspec compiles SQL views declared in CUE.
//
// A views directory holds CUE files declaring views under the top-level
// "view" struct. Each view names a table and the filters and actions it
// exposes to IQL:
//
//	view: candidates: {
//		description: "Job candidates"
//		table:       "candidate"
//		columns: ["id", "name", "country", "years_of_experience"]
//
//		filter: from_country: {
//			description: "Candidates from the given country"
//			params: [{name: "country", type: "str"}]
//			where: {column: "country", op: "=", param: "country"}
//		}
//		filter: senior: where: {column: "years_of_experience", op: ">=", value: 5}
//
//		action: first: {
//			params: [{name: "n", type: "int", default: 10}]
//			limit: {param: "n"}
//		}
//	}
//
// Filters and actions keep their CUE declaration order, which is the order
// the catalogue lists them in. Compilation reports problems as
// *CompileError with the CUE source position.
package viewspec
