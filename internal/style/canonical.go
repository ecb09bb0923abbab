package style

const (
	fontStack = "Arial, Helvetica, sans-serif"

	black   = "#000000"
	gray300 = "#d1d5db"
	gray600 = "#4b5563"
	gray700 = "#374151"
	gray800 = "#1f2937"
)

// Canonical is the single layout used by both preview and export.
func Canonical() Sheet {
	return Sheet{
		ClassBody:           {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray700, Align: AlignLeft},
		ClassName:           {FontFamily: fontStack, FontWeight: 700, FontSizePx: 24, LineHeightPx: 32, Color: black, MarginBottom: 4, Align: AlignCenter},
		ClassTitle:          {FontFamily: fontStack, FontWeight: 400, FontSizePx: 18, LineHeightPx: 28, Color: black, MarginBottom: 12, Align: AlignCenter},
		ClassContact:        {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: black, MarginBottom: 8, Align: AlignCenter},
		ClassLinks:          {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: black, MarginBottom: 24, Align: AlignCenter},
		ClassSectionHeading: {FontFamily: fontStack, FontWeight: 600, FontSizePx: 14, LineHeightPx: 20, Color: black, MarginTop: 8, MarginBottom: 6, PaddingBottom: 4, BorderBottom: 1, BorderColor: gray300, Align: AlignLeft},
		ClassParagraph:      {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray700, Align: AlignLeft},
		ClassEntryTitle:     {FontFamily: fontStack, FontWeight: 500, FontSizePx: 13, LineHeightPx: 18, Color: black, MarginTop: 8, Align: AlignLeft},
		ClassEntrySubtitle:  {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray800, Align: AlignLeft},
		ClassEntryMeta:      {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray600, Align: AlignRight},
		ClassEntryLink:      {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: black, Align: AlignLeft},
		ClassEntryDetail:    {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray700, Align: AlignLeft},
		ClassBullet:         {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray700, MarginTop: 2, Indent: 16, Align: AlignLeft},
		ClassSkillCategory:  {FontFamily: fontStack, FontWeight: 500, FontSizePx: 12, LineHeightPx: 16, Color: black, Align: AlignLeft},
		ClassSkillLine:      {FontFamily: fontStack, FontWeight: 400, FontSizePx: 12, LineHeightPx: 16, Color: gray700, MarginTop: 4, Align: AlignLeft},
	}
}
