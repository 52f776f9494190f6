package cmd

import "pig/internal/output"

const (
	legacyModuleBuild = output.MODULE_BUILD
	legacyModuleDo    = output.MODULE_DO
	legacyModuleExt   = output.MODULE_EXT
	legacyModulePb    = output.MODULE_PB
	legacyModulePe    = output.MODULE_PE
	legacyModulePg    = output.MODULE_PG
	legacyModulePt    = output.MODULE_PT
	legacyModuleSty   = output.MODULE_STY
)
