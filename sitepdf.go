// Package sitepdf discovers PDF documents published on a website by
// recursively walking its sitemaps. It finds sitemap files through
// robots.txt and conventional locations, expands sitemap-index trees
// level by level with a bounded worker pool, and reports every same-domain
// URL that points at a PDF.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, etree/, sqlite/, kafka/).
package sitepdf
