package domain

// DrawFromHash exposes drawFromHash to the external test package.
var DrawFromHash = drawFromHash
