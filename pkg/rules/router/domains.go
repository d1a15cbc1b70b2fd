package router

// Rulebook domain keys. The "icc." prefix marks domains published by the
// International Chamber of Commerce; ICC domains participate in the
// jurisdiction fallback to "global" and always receive the cross-document
// supplement.
const (
	DomainUCP600   = "icc.ucp600"
	DomainISP98    = "icc.isp98"
	DomainURDG758  = "icc.urdg758"
	DomainURC522   = "icc.urc522"
	DomainEUCP     = "icc.eucp2.1"
	DomainURR725   = "icc.urr725"
	DomainCrossDoc = "icc.lcopilot.crossdoc"
)

// ICCPrefix marks ICC rulebook domains.
const ICCPrefix = "icc."
