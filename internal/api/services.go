package api

import _ "embed"

//go:generate go run ../../cmd/lark-gen --schema endpoints.yaml --out zz_generated_endpoints.go --package api

// EndpointSchema is the endpoint schema the façade methods are generated
// from. cmd/lark-gen and the schema command read it.
//
//go:embed endpoints.yaml
var EndpointSchema []byte

// Service accessors group Client methods by platform domain.
// Each service embeds *Client so the generated methods reach the dispatcher.

type ApprovalService struct{ *Client }

type CalendarService struct{ *Client }

type ChatsService struct{ *Client }

type ContactsService struct{ *Client }

type MessagesService struct{ *Client }

type ImagesService struct{ *Client }

type FilesService struct{ *Client }

type HelpdeskService struct{ *Client }

type DriveService struct{ *Client }

type AuthenService struct{ *Client }

func (c *Client) Approval() ApprovalService {
	return ApprovalService{c}
}

func (c *Client) Calendar() CalendarService {
	return CalendarService{c}
}

func (c *Client) Chats() ChatsService {
	return ChatsService{c}
}

func (c *Client) Contacts() ContactsService {
	return ContactsService{c}
}

func (c *Client) Messages() MessagesService {
	return MessagesService{c}
}

func (c *Client) Images() ImagesService {
	return ImagesService{c}
}

func (c *Client) Files() FilesService {
	return FilesService{c}
}

func (c *Client) Helpdesk() HelpdeskService {
	return HelpdeskService{c}
}

func (c *Client) Drive() DriveService {
	return DriveService{c}
}

func (c *Client) Authen() AuthenService {
	return AuthenService{c}
}
