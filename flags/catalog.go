package flags

import "github.com/grovetools/gerrit-hooks/hooks"

// ChangeKinds are the values Gerrit passes as patchset-created's --kind.
var ChangeKinds = []string{
	"REWORK",
	"TRIVIAL_REBASE",
	"MERGE_FIRST_PARENT_UPDATE",
	"NO_CODE_CHANGE",
	"NO_CHANGE",
}

// DefaultApprovalCategories are the labels every Gerrit site ships with.
var DefaultApprovalCategories = []string{"Code-Review", "Verified"}

// Gerrit may pass --topic with nothing after it when a change has no topic.
func topic() Spec {
	return optional("--topic", "<topic>", "", "")
}

// defaultFlags mirrors the hooks plugin documentation, one list per hook.
func defaultFlags() map[hooks.Hook][]Spec {
	return map[hooks.Hook][]Spec{
		hooks.RefUpdate: {
			flag("--project", "<project name>"),
			flag("--refname", "<refname>"),
			flag("--uploader", "<uploader>"),
			flag("--uploader-username", "<username>"),
			flag("--oldrev", "<sha1>"),
			flag("--newrev", "<sha1>"),
		},
		hooks.CommitReceived: {
			flag("--project", "<project name>"),
			flag("--refname", "<refname>"),
			flag("--uploader", "<uploader>"),
			flag("--uploader-username", "<username>"),
			flag("--oldrev", "<sha1>"),
			flag("--newrev", "<sha1>"),
			flag("--cmdref", "<refname>"),
		},
		hooks.Submit: {
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			flag("--submitter", "<submitter>"),
			flag("--patchset", "<patchset id>"),
			flag("--commit", "<sha1>"),
		},
		hooks.PatchsetCreated: {
			flag("--change", "<change id>"),
			choice("--kind", "<change kind>", ChangeKinds...),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--uploader", "<uploader>"),
			flag("--uploader-username", "<username>"),
			flag("--commit", "<sha1>"),
			flag("--patchset", "<patchset id>"),
		},
		hooks.CommentAdded: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--author", "<comment author>"),
			flag("--author-username", "<username>"),
			flag("--commit", "<commit>"),
			flag("--comment", "<comment>"),
			flag("--Code-Review", "<score>"),
			flag("--Verified", "<score>"),
			flag("--Code-Review-oldValue", "<score>"),
			flag("--Verified-oldValue", "<score>"),
		},
		hooks.ChangeMerged: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--submitter", "<submitter>"),
			flag("--submitter-username", "<username>"),
			flag("--commit", "<sha1>"),
			flag("--newrev", "<sha1>"),
		},
		hooks.ChangeAbandoned: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--abandoner", "<abandoner>"),
			flag("--abandoner-username", "<username>"),
			flag("--commit", "<sha1>"),
			flag("--reason", "<reason>"),
		},
		hooks.ChangeDeleted: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--deleter", "<deleter>"),
		},
		hooks.ChangeRestored: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			topic(),
			flag("--restorer", "<restorer>"),
			flag("--restorer-username", "<username>"),
			flag("--commit", "<sha1>"),
			flag("--reason", "<reason>"),
		},
		hooks.RefUpdated: {
			flag("--oldrev", "<old rev>"),
			flag("--newrev", "<new rev>"),
			flag("--refname", "<ref name>"),
			flag("--project", "<project name>"),
			flag("--submitter", "<submitter>"),
			flag("--submitter-username", "<username>"),
		},
		hooks.ProjectCreated: {
			flag("--project", "<project name>"),
			flag("--head", "<head name>"),
		},
		hooks.ReviewerAdded: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			flag("--reviewer", "<reviewer>"),
			flag("--reviewer-username", "<username>"),
		},
		hooks.ReviewerDeleted: {
			flag("--change", "<change id>"),
			flag("--change-url", "<change url>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			flag("--reviewer", "<reviewer>"),
			flag("--Code-Review", "<score>"),
		},
		hooks.TopicChanged: {
			flag("--change", "<change id>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			flag("--changer", "<changer>"),
			flag("--changer-username", "<username>"),
			flag("--old-topic", "<old topic>"),
			flag("--new-topic", "<new topic>"),
		},
		hooks.HashtagsChanged: {
			flag("--change", "<change id>"),
			flag("--change-owner", "<change owner>"),
			flag("--change-owner-username", "<username>"),
			flag("--project", "<project name>"),
			flag("--branch", "<branch>"),
			flag("--editor", "<editor>"),
			flag("--editor-username", "<username>"),
			repeatable("--added", "<hashtag>"),
			repeatable("--removed", "<hashtag>"),
			repeatable("--hashtag", "<hashtag>"),
		},
		hooks.ClaSigned: {
			flag("--submitter", "<submitter>"),
			flag("--user-id", "<user_id>"),
			flag("--cla-id", "<cla_id>"),
		},
	}
}
