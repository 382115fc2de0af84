// Package knowledge loads the curated vocabulary the query engine reasons with.
//
// A knowledge base holds an intent pattern table and three catalogs: tech
// domains, companies and non-tech domains. It is read from YAML once at
// startup and is immutable afterwards. The default vocabulary is compiled
// into the binary and is available through Default.
//
// Domain identifiers are namespaced so that they are unique across catalogs:
// companies become "company_<name>", non-tech domains "non_tech_<name>", and
// tech domains keep their bare name.
package knowledge
