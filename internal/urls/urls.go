package urls

// Documentation URLs for guides and troubleshooting.
// All URLs point into the project repository.

// Repository is the project home page.
const Repository = "https://github.com/tempsense/tempsense"

// Troubleshooting covers displays that are not found or do not respond:
// mDNS across subnets, client isolation, and firewall rules.
const Troubleshooting = Repository + "#troubleshooting"

// FieldReference documents every configuration field and its range.
const FieldReference = Repository + "#configuration-fields"
