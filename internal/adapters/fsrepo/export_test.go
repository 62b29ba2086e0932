package fsrepo

// ManifestPattern exposes manifestPattern for tests.
var ManifestPattern = manifestPattern
