// Package language normalizes audio/subtitle language codes for the
// remux track filter. Operators may pass ISO 639-1 (2-letter) or ISO
// 639-2 (3-letter, including bibliographic variants) codes; mkvmerge
// track selectors want the 3-letter form, so everything funnels through
// here.
package language
