// Package extract turns fetched storefront resources into profile fragments.
//
// Every extractor is a pure function over one resource and reports whether it
// found anything; a malformed resource yields found=false for that fragment
// only. Sequencing and fallbacks across resources belong to the engine.
package extract
