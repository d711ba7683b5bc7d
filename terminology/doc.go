// Package terminology defines the collaborator contract between the
// resolution engine and a coded terminology service, along with an
// in-memory implementation backed by a local LOINC table export and a
// caching decorator for remote services.
//
// The engine depends on two operations only: Expand (text-filtered
// candidate search) and Lookup (detail retrieval by code). A remote FHIR
// implementation lives in the fhir package; the in-memory TableService here
// serves offline runs against LoincTableCore.csv.
package terminology
