// Package rank re-orders candidate records against an expanded query.
//
// Each record is scored on five signals: cosine similarity between the
// query's semantic text and the record's comparison text, knowledge base
// domain hits, company mentions, expanded term hits, and the record's
// prior score. The combined score is
//
//	semantic*0.6 + min(domain/10,1)*0.3 + min(company/10,1)*0.1
//	    + min(expanded/10,1)*0.1 + prior*0.5
//
// with the coefficients adjustable through WithWeights.
package rank
