package ews

import "fmt"

// Requests target Exchange 2010 SP2 and later, matching the protocol level
// the estimator's property set requires.
const serverVersion = "Exchange2010_SP2"

// soapEnvelope wraps one operation body. The first verb is the optional
// impersonation header, the second the operation element.
const soapEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
    xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
  <soap:Header>
    <t:RequestServerVersion Version="` + serverVersion + `"/>%s
  </soap:Header>
  <soap:Body>%s</soap:Body>
</soap:Envelope>`

// getFolderBody binds the message folder root of the impersonated mailbox.
const getFolderBody = `<m:GetFolder>
  <m:FolderShape><t:BaseShape>IdOnly</t:BaseShape></m:FolderShape>
  <m:FolderIds>
    <t:DistinguishedFolderId Id="msgfolderroot">
      <t:Mailbox><t:EmailAddress>%s</t:EmailAddress></t:Mailbox>
    </t:DistinguishedFolderId>
  </m:FolderIds>
</m:GetFolder>`

// findFolderBody enumerates one page of the full folder hierarchy.
// Verbs: page size, offset, impersonated mailbox.
const findFolderBody = `<m:FindFolder Traversal="Deep">
  <m:FolderShape>
    <t:BaseShape>IdOnly</t:BaseShape>
    <t:AdditionalProperties><t:FieldURI FieldURI="folder:DisplayName"/></t:AdditionalProperties>
  </m:FolderShape>
  <m:IndexedPageFolderView MaxEntriesReturned="%d" Offset="%d" BasePoint="Beginning"/>
  <m:ParentFolderIds>
    <t:DistinguishedFolderId Id="msgfolderroot">
      <t:Mailbox><t:EmailAddress>%s</t:EmailAddress></t:Mailbox>
    </t:DistinguishedFolderId>
  </m:ParentFolderIds>
</m:FindFolder>`

// findItemBody enumerates one page of items in a folder, requesting only
// the size and creation-date properties. Verbs: page size, offset,
// optional restriction, folder id attributes.
const findItemBody = `<m:FindItem Traversal="Shallow">
  <m:ItemShape>
    <t:BaseShape>IdOnly</t:BaseShape>
    <t:AdditionalProperties>
      <t:FieldURI FieldURI="item:Size"/>
      <t:FieldURI FieldURI="item:DateTimeCreated"/>
    </t:AdditionalProperties>
  </m:ItemShape>
  <m:IndexedPageItemView MaxEntriesReturned="%d" Offset="%d" BasePoint="Beginning"/>%s
  <m:ParentFolderIds><t:FolderId Id="%s"%s/></m:ParentFolderIds>
</m:FindItem>`

// createdOnOrBeforeRestriction filters items to those created on or before
// the cutoff (RFC 3339, UTC). The boundary is inclusive.
const createdOnOrBeforeRestriction = `
  <m:Restriction>
    <t:IsLessThanOrEqualTo>
      <t:FieldURI FieldURI="item:DateTimeCreated"/>
      <t:FieldURIOrConstant><t:Constant Value="%s"/></t:FieldURIOrConstant>
    </t:IsLessThanOrEqualTo>
  </m:Restriction>`

func impersonationHeader(mailbox string) string {
	if mailbox == "" {
		return ""
	}
	return fmt.Sprintf(`
    <t:ExchangeImpersonation>
      <t:ConnectingSID><t:PrimarySmtpAddress>%s</t:PrimarySmtpAddress></t:ConnectingSID>
    </t:ExchangeImpersonation>`, xmlEscape(mailbox))
}
