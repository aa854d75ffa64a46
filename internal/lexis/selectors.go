package lexis

import "lexharvest/internal/downloader"

// Locators for the Lexis results interface. Selectors starting with "//"
// are XPath, the rest CSS (see the browser facade contract).
const (
	availableOnlineButton = `//button[.//span[normalize-space()='Available Online' or normalize-space()='Available online']]`
	searchBox             = `lng-searchbox lng-expanding-textarea[aria-label='Search for']`
	searchButton          = `lng-searchbox lng-search-button button[aria-label='Search']`

	languageTrigger       = `button[data-filtertype='language']`
	languageLabelTemplate = `//ul[@data-id='language']//label[.//span[normalize-space()='%s']]`

	timelineChip    = `//ul[contains(@class,'filters-used')]//button[contains(@title, 'Tijdlijn:')]`
	timelineTrigger = `button[data-filtertype='datestr-news']`
	timelineMin     = `div.supplemental.timeline input.min-val`
	timelineMax     = `div.supplemental.timeline input.max-val`
	timelineSave    = `div.supplemental.timeline button.save`

	resultsTab      = `ul.content-switcher li[data-actualresultscount]`
	resultCountAttr = `data-actualresultscount`
)

// DownloadSelectors returns the download-dialog locator set for the Lexis
// delivery dialog.
func DownloadSelectors() downloader.Selectors {
	return downloader.Selectors{
		OpenDialog:         `button[data-action='downloadopt'][aria-label='Downloaden']`,
		DialogForm:         `aside.gvs-dialog.delivery[role='dialog'] form#dialog-content`,
		FullDocumentsRadio: `#DocumentsOnly`,
		RangeInput:         `fieldset.DeliveryItemType .nested.range input#SelectedRange:not(.ignore)`,
		FormatRadio:        `#Docx`,
		SeparateFilesRadio: `#SeparateFiles`,
		FormattingTab:      `a.gvs-tab-button-link.FormattingOptions`,
		FormattingPanel:    `div.gvs-tab-panel.FormattingOptions section.supplemental`,
		IncludeOptions: []string{
			`#IncludeCoverPage`,
			`#DisplayFirstLastNameEnabled`,
			`#IncludeCoverPageDetails`,
			`#PageNumberSelected`,
			`#EmbeddedReferences`,
			`#EmbeddedLegalCitationInItalicTypeEnabled`,
		},
		StylingOptions: `fieldset.styling input[type='checkbox']`,
		Submit:         `footer.dialog-footer button.button.primary[data-action='download']`,
		JobIndicator:   `#delivery-popin`,
		JobSuccess:     `ul#delivery-jobs span.status-message.success`,
		ActiveJobs:     `ul#delivery-jobs li`,
	}
}
