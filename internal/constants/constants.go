package constants

const VERSION = "0.1.0"

const USER_AGENT = "vidcat/" + VERSION + " (+https://github.com/Amund211/vidcat)"
