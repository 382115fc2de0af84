// Package extract finds entities and knowledge base domains in a query.
//
// Entities come from three sources, merged in this order: the optional
// named-entity recognizer, capitalized tokens, and a literal scan for the
// technologies and concepts of every tech domain. Domain matching counts
// literal substring hits of each domain's vocabulary.
package extract
