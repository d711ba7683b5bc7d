// Package fhir implements the client for the LOINC FHIR terminology
// service at https://fhir.loinc.org. It covers the three operations
// the mapper needs: ValueSet $expand for filter search, CodeSystem
// $lookup for concept detail, and a credential probe.
package fhir
