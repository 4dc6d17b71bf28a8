package models

const GlobalSettingsID = "global"

// GlobalSettings is the settings/global document read by the admin shell.
type GlobalSettings struct {
	ActiveThemeName string `json:"activeThemeName" validate:"required"`
	NavbarThemeName string `json:"navbarThemeName" validate:"required"`
	ActiveFont      string `json:"activeFont" validate:"required"`
}

func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		ActiveThemeName: "default",
		NavbarThemeName: "default",
		ActiveFont:      "Inter",
	}
}
