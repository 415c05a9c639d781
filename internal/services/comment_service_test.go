package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/directory"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

type CommentServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ctx     context.Context
	service *CommentService
	tasks   *TaskService
	alice   models.User
	bob     models.User
	task    *models.Task
}

func (suite *CommentServiceTestSuite) SetupTest() {
	suite.db = openTestDB(suite.T())
	suite.ctx = context.Background()

	commentRepo := repository.NewCommentRepository(suite.db)
	dir := directory.NewStore(repository.NewUserRepository(suite.db))
	suite.service = NewCommentService(commentRepo)
	suite.tasks = NewTaskService(repository.NewTaskRepository(suite.db), commentRepo, dir, nil)

	manager := createTestUser(suite.T(), suite.db, "manager", models.RoleManager)
	suite.alice = createTestUser(suite.T(), suite.db, "alice", models.RoleDeveloper)
	suite.bob = createTestUser(suite.T(), suite.db, "bob", models.RoleQA)

	task, err := suite.tasks.CreateTask(suite.ctx, identityOf(manager), CreateTaskInput{
		Title:      "Release",
		AssignedTo: []string{suite.alice.Email},
	})
	suite.Require().NoError(err)
	suite.task = task
}

func (suite *CommentServiceTestSuite) post(author models.User, body string, repliedID *string) *models.Comment {
	comment, err := suite.service.CreateComment(suite.ctx, identityOf(author), CreateCommentInput{
		TaskID:    suite.task.ID,
		Body:      body,
		RepliedID: repliedID,
	})
	suite.Require().NoError(err)
	return comment
}

func (suite *CommentServiceTestSuite) TestCreateComment_ReplyResolution() {
	parent := suite.post(suite.alice, "Can someone review?", nil)
	suite.False(parent.Replied)
	suite.Nil(parent.RepliedID)

	reply := suite.post(suite.bob, "On it", &parent.ID)
	suite.True(reply.Replied)

	loaded, err := suite.service.GetComment(suite.ctx, reply.ID)
	suite.Require().NoError(err)
	suite.Equal("bob", loaded.Author.Username)
	suite.Equal("Release", loaded.Task.Title)
	suite.Require().NotNil(loaded.Parent)
	suite.Equal("Can someone review?", loaded.Parent.Body)
	suite.Equal("alice", loaded.Parent.Author.Username)

	loaded, err = suite.service.GetComment(suite.ctx, parent.ID)
	suite.Require().NoError(err)
	suite.Nil(loaded.Parent)
}

func (suite *CommentServiceTestSuite) TestCreateComment_ReplyOfReplyShowsOneLevel() {
	root := suite.post(suite.alice, "root", nil)
	middle := suite.post(suite.bob, "middle", &root.ID)
	leaf := suite.post(suite.alice, "leaf", &middle.ID)

	loaded, err := suite.service.GetComment(suite.ctx, leaf.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(loaded.Parent)
	suite.Equal("middle", loaded.Parent.Body)
	suite.Nil(loaded.Parent.Parent)
}

func (suite *CommentServiceTestSuite) TestCreateComment_EmptyRepliedIDIgnored() {
	empty := ""
	comment := suite.post(suite.alice, "plain", &empty)
	suite.False(comment.Replied)
	suite.Nil(comment.RepliedID)
}

func (suite *CommentServiceTestSuite) TestCreateComment_UnknownParent() {
	missing := uuid.NewString()
	_, err := suite.service.CreateComment(suite.ctx, identityOf(suite.alice), CreateCommentInput{
		TaskID:    suite.task.ID,
		Body:      "reply",
		RepliedID: &missing,
	})
	suite.ErrorIs(err, ErrParentCommentNotFound)

	malformed := "123"
	_, err = suite.service.CreateComment(suite.ctx, identityOf(suite.alice), CreateCommentInput{
		TaskID:    uuid.NewString(),
		Body:      "reply",
		RepliedID: &malformed,
	})
	suite.ErrorIs(err, ErrParentCommentNotFound)
}

func (suite *CommentServiceTestSuite) TestCreateComment_MissingTaskLeavesNoOrphan() {
	_, err := suite.service.CreateComment(suite.ctx, identityOf(suite.alice), CreateCommentInput{
		TaskID: uuid.NewString(),
		Body:   "hello?",
	})
	suite.ErrorIs(err, ErrCommentTaskNotFound)
	suite.Equal(apierrors.KindValidation, apierrors.KindOf(err))

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Comment{}).Count(&count).Error)
	suite.Equal(int64(0), count)
}

func (suite *CommentServiceTestSuite) TestCreateComment_BodyRequired() {
	_, err := suite.service.CreateComment(suite.ctx, identityOf(suite.alice), CreateCommentInput{TaskID: suite.task.ID, Body: "  "})
	suite.ErrorIs(err, ErrCommentBodyRequired)
}

func (suite *CommentServiceTestSuite) TestUpdateComment_RoundTrip() {
	parent := suite.post(suite.alice, "parent", nil)
	comment := suite.post(suite.bob, "draft", &parent.ID)

	updated, err := suite.service.UpdateComment(suite.ctx, comment.ID, "final")
	suite.Require().NoError(err)
	suite.Equal("final", updated.Body)

	loaded, err := suite.service.GetComment(suite.ctx, comment.ID)
	suite.Require().NoError(err)
	suite.Equal("final", loaded.Body)
	suite.Equal(suite.bob.ID, loaded.UserID)
	suite.Equal(suite.task.ID, loaded.TaskID)
	suite.True(loaded.Replied)
	suite.Require().NotNil(loaded.Parent)
	suite.Equal("parent", loaded.Parent.Body)
}

func (suite *CommentServiceTestSuite) TestUpdateComment_NotFound() {
	_, err := suite.service.UpdateComment(suite.ctx, uuid.NewString(), "text")
	suite.ErrorIs(err, ErrCommentNotFound)

	_, err = suite.service.UpdateComment(suite.ctx, "nope", "text")
	suite.ErrorIs(err, ErrInvalidCommentID)
}

func (suite *CommentServiceTestSuite) TestGetComment_Malformed() {
	_, err := suite.service.GetComment(suite.ctx, "nope")
	suite.ErrorIs(err, ErrCommentNotFound)
}

func (suite *CommentServiceTestSuite) TestDeleteComment_PrunesBacklink() {
	keep := suite.post(suite.alice, "keep", nil)
	drop := suite.post(suite.bob, "drop", nil)

	suite.Require().NoError(suite.service.DeleteComment(suite.ctx, drop.ID))

	_, comments, err := suite.tasks.GetTask(suite.ctx, suite.task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 1)
	suite.Equal(keep.ID, comments[0].ID)

	var links int64
	suite.Require().NoError(suite.db.Model(&models.TaskComment{}).Count(&links).Error)
	suite.Equal(int64(1), links)

	suite.ErrorIs(suite.service.DeleteComment(suite.ctx, drop.ID), ErrCommentNotFound)
	suite.ErrorIs(suite.service.DeleteComment(suite.ctx, "nope"), ErrInvalidCommentID)
}

func (suite *CommentServiceTestSuite) TestListComments_NewestUpdatedFirst() {
	older := suite.post(suite.alice, "older", nil)
	time.Sleep(10 * time.Millisecond)
	suite.post(suite.bob, "newer", nil)
	time.Sleep(10 * time.Millisecond)

	comments, _, err := suite.service.ListComments(suite.ctx, ListCommentsInput{})
	suite.Require().NoError(err)
	suite.Require().Len(comments, 2)
	suite.Equal("newer", comments[0].Body)
	suite.Equal("Release", comments[0].Task.Title)
	suite.Equal("bob", comments[0].Author.Username)

	_, err = suite.service.UpdateComment(suite.ctx, older.ID, "older, edited")
	suite.Require().NoError(err)

	comments, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{})
	suite.Require().NoError(err)
	suite.Equal("older, edited", comments[0].Body)
}

func (suite *CommentServiceTestSuite) TestListComments_Filters() {
	parent := suite.post(suite.alice, "question", nil)
	suite.post(suite.bob, "answer", &parent.ID)

	comments, _, err := suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "replied", Value: "true"})
	suite.Require().NoError(err)
	suite.Require().Len(comments, 1)
	suite.Equal("answer", comments[0].Body)

	comments, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "userId", Value: suite.alice.ID})
	suite.Require().NoError(err)
	suite.Require().Len(comments, 1)
	suite.Equal("question", comments[0].Body)

	comments, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "taskId", Value: suite.task.ID})
	suite.Require().NoError(err)
	suite.Len(comments, 2)

	_, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "taskId", Value: uuid.NewString()})
	suite.ErrorIs(err, ErrNoCommentsFound)

	_, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "comment", Value: "answer"})
	suite.ErrorIs(err, ErrInvalidFilterField)

	_, _, err = suite.service.ListComments(suite.ctx, ListCommentsInput{Field: "replied", Value: "sometimes"})
	suite.ErrorIs(err, ErrInvalidFilterValue)
}

func (suite *CommentServiceTestSuite) TestListComments_EmptyPageNotFound() {
	suite.post(suite.alice, "only", nil)

	_, _, err := suite.service.ListComments(suite.ctx, ListCommentsInput{Page: 2, Limit: 1})
	suite.ErrorIs(err, ErrNoCommentsFound)
}

func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}
