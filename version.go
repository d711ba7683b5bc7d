package loincmapper

// Version is the loinc-mapper release version.
const Version = "0.2.0"

// UserAgent identifies this client to the terminology service.
const UserAgent = "loinc-mapper/" + Version
