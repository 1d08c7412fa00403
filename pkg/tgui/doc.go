// Package tgui holds the small HTML helpers used to build Telegram messages
// sent with ParseMode="HTML".
//
// Values of type H are already escaped; untrusted text goes through Esc, B or
// Link.
package tgui
