// Package slug converts names into URL-safe identifiers. The registry uses
// it to derive storefront subdomains from tenant names: diacritics fold to
// ASCII, everything else collapses to hyphens, and an optional random
// suffix keeps similar names from colliding.
//
//	slug.Make("Café & Co!")                        // "cafe-co"
//	slug.Make("Acme", slug.WithSuffix(6))          // "acme-x7g3k2"
//	slug.Make("A Very Long Name", slug.MaxLength(8)) // "a-very-l"
package slug
